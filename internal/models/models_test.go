package models

import (
	"encoding/json"
	"testing"
)

func TestIDUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want ID
	}{
		{`"142"`, "142"},
		{`142`, "142"},
		{`null`, ""},
		{`"a-1"`, "a-1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var id ID
			if err := json.Unmarshal([]byte(tt.in), &id); err != nil {
				t.Fatal(err)
			}
			if id != tt.want {
				t.Errorf("got %q, want %q", id, tt.want)
			}
		})
	}

	var id ID
	if err := json.Unmarshal([]byte(`{}`), &id); err == nil {
		t.Error("expected error for object")
	}
}

func TestTransportTypeUnmarshal(t *testing.T) {
	var route Route
	if err := json.Unmarshal([]byte(`{"id":13,"transport_type":"2","title":"13"}`), &route); err != nil {
		t.Fatal(err)
	}
	if route.ID != "13" || route.TransportType != TransportTrolleybus {
		t.Errorf("got %+v", route)
	}

	var tt TransportType
	if err := json.Unmarshal([]byte(`"x"`), &tt); err != nil {
		t.Fatal(err)
	}
	if tt != TransportUnknown || tt.Known() {
		t.Errorf("got %v", tt)
	}
	if tt.FullName() != defaultFullName || tt.Glyph() != defaultGlyph {
		t.Errorf("unexpected fallback names %q %q", tt.FullName(), tt.Glyph())
	}
	if TransportTram.FullName() != "🚊 Трамвай" {
		t.Errorf("got %q", TransportTram.FullName())
	}
}

package routepath

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bluele/gcache"

	"github.com/catouberos/transit-forecast/internal/cache"
	"github.com/catouberos/transit-forecast/internal/models"
	"github.com/catouberos/transit-forecast/internal/provider/providertest"
)

func samplePath() *models.RoutePath {
	return &models.RoutePath{
		RouteID:   "13",
		Direction: 0,
		Points: []models.PathPoint{
			{Order: 10, PlatformID: "500", StopName: "Площадь Ленина"},
			{Order: 40, PlatformID: "502", StopName: "Цирк"},
			{Order: 15},
			{Order: 20, PlatformID: "501", StopName: "Вокзал"},
			{Order: 50, PlatformID: "503"},
		},
	}
}

func TestNextStopName(t *testing.T) {
	tests := []struct {
		name     string
		path     *models.RoutePath
		platform models.ID
		want     string
	}{
		{"next named stop by order", samplePath(), "500", "Вокзал"},
		{"points are not sorted", samplePath(), "501", "Цирк"},
		{"unnamed remainder", samplePath(), "502", ""},
		{"end of line", samplePath(), "503", ""},
		{"platform not on path", samplePath(), "999", ""},
		{"nil path", nil, "500", ""},
		{"empty platform id never matches geometry points", samplePath(), "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextStopName(tt.path, tt.platform); got != tt.want {
				t.Errorf("NextStopName(%s) = %q, want %q", tt.platform, got, tt.want)
			}
		})
	}
}

func TestNextStopNameTieTakesFirst(t *testing.T) {
	path := &models.RoutePath{Points: []models.PathPoint{
		{Order: 1, PlatformID: "1"},
		{Order: 2, StopName: "A"},
		{Order: 2, StopName: "B"},
	}}
	if got := NextStopName(path, "1"); got != "A" {
		t.Errorf("NextStopName = %q, want A", got)
	}
}

func newResolver(t *testing.T, p *providertest.Fake) *Resolver {
	t.Helper()
	c := cache.NewMemory[models.RoutePath](10, 24*time.Hour, gcache.NewFakeClock())
	return New(p, c)
}

func TestRoutePathCaches(t *testing.T) {
	p := providertest.New()
	p.AddPath(samplePath())
	r := newResolver(t, p)

	for i := 0; i < 3; i++ {
		path, err := r.RoutePath(context.Background(), "13", 0)
		if err != nil {
			t.Fatalf("RoutePath: %v", err)
		}
		if path == nil || len(path.Points) != 5 {
			t.Fatalf("unexpected path %+v", path)
		}
	}
	if n := p.Calls("FetchRoutePath"); n != 1 {
		t.Errorf("provider called %d times, want 1", n)
	}

	if err := r.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, err := r.RoutePath(context.Background(), "13", 0); err != nil {
		t.Fatal(err)
	}
	if n := p.Calls("FetchRoutePath"); n != 2 {
		t.Errorf("provider called %d times after Clear, want 2", n)
	}
}

func TestRoutePathNotFound(t *testing.T) {
	p := providertest.New()
	r := newResolver(t, p)

	path, err := r.RoutePath(context.Background(), "13", 1)
	if err != nil || path != nil {
		t.Fatalf("RoutePath = %+v, %v; want nil, nil", path, err)
	}

	// not-found results are not cached
	_, _ = r.RoutePath(context.Background(), "13", 1)
	if n := p.Calls("FetchRoutePath"); n != 2 {
		t.Errorf("provider called %d times, want 2", n)
	}
}

func TestRoutePathError(t *testing.T) {
	p := providertest.New()
	boom := errors.New("timeout")
	p.PathErrors[Key("13", 0)] = boom
	r := newResolver(t, p)

	if _, err := r.RoutePath(context.Background(), "13", 0); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestRoutePathConcurrent(t *testing.T) {
	p := providertest.New()
	p.AddPath(samplePath())
	r := newResolver(t, p)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			path, err := r.RoutePath(context.Background(), "13", 0)
			if err != nil || path == nil {
				t.Errorf("RoutePath = %v, %v", path, err)
			}
		}()
	}
	wg.Wait()
}

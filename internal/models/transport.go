package models

import (
	"encoding/json"
	"strconv"
)

type TransportType int

const (
	TransportUnknown    TransportType = 0
	TransportBus        TransportType = 1
	TransportTrolleybus TransportType = 2
	TransportTram       TransportType = 3
	TransportMinibus    TransportType = 8
)

// TransportTypes lists the known types in display order.
var TransportTypes = []TransportType{
	TransportBus,
	TransportTrolleybus,
	TransportTram,
	TransportMinibus,
}

const (
	defaultGlyph    = "🚍"
	defaultName     = "Транспорт"
	defaultFullName = defaultGlyph + " " + defaultName
)

var transportGlyphs = map[TransportType]string{
	TransportBus:        "🚌",
	TransportTrolleybus: "🚎",
	TransportTram:       "🚊",
	TransportMinibus:    "🚐",
}

var transportNames = map[TransportType]string{
	TransportBus:        "Автобусы",
	TransportTrolleybus: "Троллейбусы",
	TransportTram:       "Трамваи",
	TransportMinibus:    "Маршрутки",
}

var transportSingular = map[TransportType]string{
	TransportBus:        "Автобус",
	TransportTrolleybus: "Троллейбус",
	TransportTram:       "Трамвай",
	TransportMinibus:    "Маршрутка",
}

func (t TransportType) Known() bool {
	_, ok := transportGlyphs[t]
	return ok
}

func (t TransportType) Glyph() string {
	if g, ok := transportGlyphs[t]; ok {
		return g
	}
	return defaultGlyph
}

func (t TransportType) Name() string {
	if n, ok := transportNames[t]; ok {
		return n
	}
	return defaultName
}

func (t TransportType) FullName() string {
	if n, ok := transportSingular[t]; ok {
		return t.Glyph() + " " + n
	}
	return defaultFullName
}

// UnmarshalJSON accepts both 1 and "1"; anything unparsable is unknown.
func (t *TransportType) UnmarshalJSON(data []byte) error {
	var id ID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}

	v, err := strconv.Atoi(id.String())
	if err != nil {
		*t = TransportUnknown
		return nil
	}
	*t = TransportType(v)
	return nil
}

package models

type Platform struct {
	ID  ID      `json:"id"`
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Stop struct {
	ID        ID         `json:"id"`
	Title     string     `json:"title"`
	Platforms []Platform `json:"platforms"`
}

type Route struct {
	ID            ID            `json:"id"`
	TransportType TransportType `json:"transport_type"`
	Title         string        `json:"title"`
	NameBegin     string        `json:"name_begin"`
	NameEnd       string        `json:"name_end"`
	BeginStopID   ID            `json:"begin_stop_id"`
	EndStopID     ID            `json:"end_stop_id"`
	Fare          float64       `json:"fare"`
}

type ArrivalMarker struct {
	ID             ID      `json:"id"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	Azimuth        float64 `json:"azimuth"`
	PredictSeconds float64 `json:"predict"`
}

type ForecastEntry struct {
	RouteID       ID              `json:"id_alias"`
	TransportType TransportType   `json:"transport_type"`
	Direction     int             `json:"direction"`
	Markers       []ArrivalMarker `json:"marker"`
}

// PathPoint is a single point of a route path ("trassa"). Only some points
// are stops; the rest are plain geometry.
type PathPoint struct {
	Order      int     `json:"order"`
	StopID     ID      `json:"id_stop,omitempty"`
	StopName   string  `json:"name_stop,omitempty"`
	PlatformID ID      `json:"id_platform,omitempty"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
}

type RoutePath struct {
	RouteID   ID          `json:"id_route"`
	Title     string      `json:"title"`
	Direction int         `json:"direction"`
	Points    []PathPoint `json:"trassa"`
}

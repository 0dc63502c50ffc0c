// Package gtfsrt exports platform forecasts as GTFS-realtime feeds.
package gtfsrt

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"

	"github.com/catouberos/transit-forecast/internal/models"
)

const (
	Binary        = false
	HumanReadable = true
)

// Feed builds a feed with one TripUpdate per predicted arrival at
// platformID, plus a VehiclePosition for every marker that carries
// coordinates. Arrival times are relative to now.
func Feed(platformID models.ID, entries []models.ForecastEntry, now time.Time) *gtfs.FeedMessage {
	g := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: ptr("2.0"),
			Incrementality:      ptr(gtfs.FeedHeader_FULL_DATASET),
			Timestamp:           ptr(uint64(now.Unix())),
		},
	}

	for _, entry := range entries {
		for i, marker := range entry.Markers {
			id := entityID(platformID, entry, marker, i)
			trip := &gtfs.TripDescriptor{
				RouteId:     ptr(entry.RouteID.String()),
				DirectionId: ptr(uint32(entry.Direction)),
			}

			var vehicle *gtfs.VehicleDescriptor
			if marker.ID != "" {
				vehicle = &gtfs.VehicleDescriptor{Id: ptr(marker.ID.String())}
			}

			arrival := now.Add(time.Duration(math.Max(marker.PredictSeconds, 0) * float64(time.Second)))
			g.Entity = append(g.Entity, &gtfs.FeedEntity{
				Id: ptr(id),
				TripUpdate: &gtfs.TripUpdate{
					Trip:    trip,
					Vehicle: vehicle,
					StopTimeUpdate: []*gtfs.TripUpdate_StopTimeUpdate{{
						StopId:  ptr(platformID.String()),
						Arrival: &gtfs.TripUpdate_StopTimeEvent{Time: ptr(arrival.Unix())},
					}},
					Timestamp: ptr(uint64(now.Unix())),
				},
			})

			if marker.Lat == 0 && marker.Lng == 0 {
				continue
			}
			g.Entity = append(g.Entity, &gtfs.FeedEntity{
				Id: ptr(id + "-position"),
				Vehicle: &gtfs.VehiclePosition{
					Trip:    trip,
					Vehicle: vehicle,
					Position: &gtfs.Position{
						Latitude:  ptr(float32(marker.Lat)),
						Longitude: ptr(float32(marker.Lng)),
						Bearing:   ptr(float32(marker.Azimuth)),
					},
					Timestamp: ptr(uint64(now.Unix())),
				},
			})
		}
	}

	return g
}

func entityID(platformID models.ID, entry models.ForecastEntry, marker models.ArrivalMarker, i int) string {
	if marker.ID != "" {
		return fmt.Sprintf("%s-%s-%d-%s", platformID, entry.RouteID, entry.Direction, marker.ID)
	}
	return fmt.Sprintf("%s-%s-%d-%d", platformID, entry.RouteID, entry.Direction, i)
}

// Dump writes feed to w as protobuf, or as prototext when humanReadable.
func Dump(w io.Writer, feed *gtfs.FeedMessage, humanReadable bool) error {
	var data []byte
	var err error

	if humanReadable {
		data, err = prototext.MarshalOptions{Multiline: true}.Marshal(feed)
	} else {
		data, err = proto.Marshal(feed)
	}

	if err != nil {
		return err
	}

	_, err = io.Copy(w, bytes.NewReader(data))
	return err
}

func ptr[T any](v T) *T {
	return &v
}

// Package routepath resolves route paths ("trassa") and the stop a vehicle
// heads to after a given platform.
package routepath

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/catouberos/transit-forecast/internal/cache"
	"github.com/catouberos/transit-forecast/internal/models"
	"github.com/catouberos/transit-forecast/internal/provider"
)

type Resolver struct {
	provider provider.Provider
	cache    cache.Cache[models.RoutePath]
	group    singleflight.Group
}

func New(p provider.Provider, c cache.Cache[models.RoutePath]) *Resolver {
	return &Resolver{provider: p, cache: c}
}

func Key(routeID models.ID, direction int) string {
	return fmt.Sprintf("%s_%d", routeID, direction)
}

// RoutePath returns the path of a route in one direction. A nil path with a
// nil error means the provider knows no such path.
func (r *Resolver) RoutePath(ctx context.Context, routeID models.ID, direction int) (*models.RoutePath, error) {
	key := Key(routeID, direction)

	if path, ok := r.cache.Load(key); ok {
		return &path, nil
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		path, err := r.provider.FetchRoutePath(ctx, routeID, direction)
		if err != nil {
			return nil, err
		}
		if path == nil {
			return nil, nil
		}

		if err := r.cache.Save(key, *path); err != nil {
			slog.Warn("Cannot cache route path", "route", routeID, "direction", direction, "error", err)
		}
		return path, nil
	})
	if err != nil {
		return nil, err
	}

	path, _ := v.(*models.RoutePath)
	return path, nil
}

func (r *Resolver) Clear() error {
	return r.cache.ClearAll()
}

// NextStopName returns the name of the first named stop after platformID
// along path, or "" when the platform is not on the path or nothing named
// follows it.
func NextStopName(path *models.RoutePath, platformID models.ID) string {
	if path == nil || platformID == "" {
		return ""
	}

	current := -1
	for i, p := range path.Points {
		if p.PlatformID == platformID {
			current = i
			break
		}
	}
	if current < 0 {
		return ""
	}

	order := path.Points[current].Order
	next := -1
	for i, p := range path.Points {
		if p.Order <= order || p.StopName == "" {
			continue
		}
		if next < 0 || p.Order < path.Points[next].Order {
			next = i
		}
	}
	if next < 0 {
		return ""
	}
	return path.Points[next].StopName
}

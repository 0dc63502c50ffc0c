// Package store keeps the last loaded snapshot of stops and routes.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/catouberos/transit-forecast/internal/cache"
	"github.com/catouberos/transit-forecast/internal/models"
	"github.com/catouberos/transit-forecast/internal/provider"
)

// the stops and routes caches hold a single document each
const snapshotKey = ""

type stopSnapshot struct {
	list []models.Stop
	byID map[models.ID]int
}

type routeSnapshot struct {
	list    []models.Route
	byID    map[models.ID]int
	byTitle map[string][]int
}

type Store struct {
	provider    provider.Provider
	stopsCache  cache.Cache[[]models.Stop]
	routesCache cache.Cache[[]models.Route]

	stops  atomic.Pointer[stopSnapshot]
	routes atomic.Pointer[routeSnapshot]
}

func New(p provider.Provider, stopsCache cache.Cache[[]models.Stop], routesCache cache.Cache[[]models.Route]) *Store {
	return &Store{
		provider:    p,
		stopsCache:  stopsCache,
		routesCache: routesCache,
	}
}

func (s *Store) LoadStops(ctx context.Context) error {
	if stops, ok := s.stopsCache.Load(snapshotKey); ok && len(stops) > 0 {
		s.setStops(stops)
		slog.Info("Loaded stops", "count", len(stops), "source", "cache")
		return nil
	}

	return s.fetchStops(ctx)
}

func (s *Store) fetchStops(ctx context.Context) error {
	stops, err := s.provider.FetchStops(ctx)
	if err != nil {
		return err
	}

	s.setStops(stops)
	if err := s.stopsCache.Save(snapshotKey, stops); err != nil {
		slog.Warn("Cannot cache stops", "error", err)
	}

	slog.Info("Loaded stops", "count", len(stops), "source", "api")
	return nil
}

func (s *Store) LoadRoutes(ctx context.Context) error {
	if routes, ok := s.routesCache.Load(snapshotKey); ok && len(routes) > 0 {
		s.setRoutes(routes)
		slog.Info("Loaded routes", "count", len(routes), "source", "cache")
		return nil
	}

	return s.fetchRoutes(ctx)
}

func (s *Store) fetchRoutes(ctx context.Context) error {
	routes, err := s.provider.FetchRoutes(ctx)
	if err != nil {
		return err
	}

	s.setRoutes(routes)
	if err := s.routesCache.Save(snapshotKey, routes); err != nil {
		slog.Warn("Cannot cache routes", "error", err)
	}

	slog.Info("Loaded routes", "count", len(routes), "source", "api")
	return nil
}

// EnsureLoaded loads whichever of stops and routes is still empty and
// reports whether both are available afterwards. Loaded data is not
// refreshed.
func (s *Store) EnsureLoaded(ctx context.Context) bool {
	if len(s.Stops()) == 0 {
		if err := s.LoadStops(ctx); err != nil {
			slog.Error("Error loading stops", "error", err)
			return false
		}
	}

	if len(s.Routes()) == 0 {
		if err := s.LoadRoutes(ctx); err != nil {
			slog.Error("Error loading routes", "error", err)
			return false
		}
	}

	return len(s.Stops()) > 0 && len(s.Routes()) > 0
}

// Clear drops the cached and in-memory snapshots so the next load goes to
// the provider.
func (s *Store) Clear() error {
	s.stops.Store(nil)
	s.routes.Store(nil)

	return errors.Join(
		s.stopsCache.ClearAll(),
		s.routesCache.ClearAll(),
	)
}

// Refresh clears everything and reloads stops and routes from the provider.
func (s *Store) Refresh(ctx context.Context) (stops, routes int, err error) {
	if err := s.Clear(); err != nil {
		slog.Warn("Cannot clear caches", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.LoadStops(ctx); err != nil {
			return fmt.Errorf("load stops: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.LoadRoutes(ctx); err != nil {
			return fmt.Errorf("load routes: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return len(s.Stops()), len(s.Routes()), err
	}
	return len(s.Stops()), len(s.Routes()), nil
}

// Reload fetches stops and routes from the provider, bypassing the caches.
// Unlike Refresh, a failed fetch keeps the current snapshot.
func (s *Store) Reload(ctx context.Context) (stops, routes int, err error) {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.fetchStops(ctx); err != nil {
			return fmt.Errorf("reload stops: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.fetchRoutes(ctx); err != nil {
			return fmt.Errorf("reload routes: %w", err)
		}
		return nil
	})

	err = g.Wait()
	return len(s.Stops()), len(s.Routes()), err
}

func (s *Store) Stops() []models.Stop {
	if snap := s.stops.Load(); snap != nil {
		return snap.list
	}
	return nil
}

func (s *Store) Routes() []models.Route {
	if snap := s.routes.Load(); snap != nil {
		return snap.list
	}
	return nil
}

// SearchStops returns every stop whose title contains all whitespace
// separated words of query, case-insensitively, in store order.
func (s *Store) SearchStops(query string) []models.Stop {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(query)))
	if len(words) == 0 {
		return nil
	}

	var found []models.Stop
	for _, stop := range s.Stops() {
		title := strings.ToLower(stop.Title)
		if containsAll(title, words) {
			found = append(found, stop)
		}
	}
	return found
}

func containsAll(s string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(s, w) {
			return false
		}
	}
	return true
}

func (s *Store) FindStopByID(id models.ID) (models.Stop, bool) {
	snap := s.stops.Load()
	if snap == nil {
		return models.Stop{}, false
	}

	i, ok := snap.byID[id]
	if !ok {
		return models.Stop{}, false
	}
	return snap.list[i], true
}

func (s *Store) FindRouteByID(id models.ID) (models.Route, bool) {
	snap := s.routes.Load()
	if snap == nil {
		return models.Route{}, false
	}

	i, ok := snap.byID[id]
	if !ok {
		return models.Route{}, false
	}
	return snap.list[i], true
}

// FindRoutesByTitle returns all routes displayed under the given number.
func (s *Store) FindRoutesByTitle(title string) []models.Route {
	snap := s.routes.Load()
	if snap == nil {
		return nil
	}

	idx := snap.byTitle[title]
	routes := make([]models.Route, 0, len(idx))
	for _, i := range idx {
		routes = append(routes, snap.list[i])
	}
	return routes
}

func (s *Store) setStops(stops []models.Stop) {
	snap := &stopSnapshot{
		list: stops,
		byID: make(map[models.ID]int, len(stops)),
	}
	for i, stop := range stops {
		if _, dup := snap.byID[stop.ID]; !dup {
			snap.byID[stop.ID] = i
		}
	}
	s.stops.Store(snap)
}

func (s *Store) setRoutes(routes []models.Route) {
	snap := &routeSnapshot{
		list:    routes,
		byID:    make(map[models.ID]int, len(routes)),
		byTitle: make(map[string][]int),
	}
	for i, route := range routes {
		if _, dup := snap.byID[route.ID]; !dup {
			snap.byID[route.ID] = i
		}
		snap.byTitle[route.Title] = append(snap.byTitle[route.Title], i)
	}
	s.routes.Store(snap)
}

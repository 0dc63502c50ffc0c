// Package providertest provides an in-memory provider.Provider for tests.
package providertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/catouberos/transit-forecast/internal/models"
	"github.com/catouberos/transit-forecast/internal/provider"
)

type Fake struct {
	mu sync.Mutex

	Stops      []models.Stop
	Routes     []models.Route
	Forecasts  map[models.ID][]models.ForecastEntry
	Paths      map[string]*models.RoutePath
	StopsErr   error
	RoutesErr  error
	Failing    map[models.ID]error
	PathErrors map[string]error

	calls map[string]int
}

var _ provider.Provider = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		Forecasts:  map[models.ID][]models.ForecastEntry{},
		Paths:      map[string]*models.RoutePath{},
		Failing:    map[models.ID]error{},
		PathErrors: map[string]error{},
		calls:      map[string]int{},
	}
}

func PathKey(routeID models.ID, direction int) string {
	return fmt.Sprintf("%s_%d", routeID, direction)
}

// AddPath registers a route path under its own route and direction.
func (f *Fake) AddPath(p *models.RoutePath) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Paths[PathKey(p.RouteID, p.Direction)] = p
}

// Calls reports how many times the named method was invoked.
func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *Fake) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
}

func (f *Fake) FetchStops(ctx context.Context) ([]models.Stop, error) {
	f.record("FetchStops")
	if f.StopsErr != nil {
		return nil, f.StopsErr
	}
	return f.Stops, nil
}

func (f *Fake) FetchRoutes(ctx context.Context) ([]models.Route, error) {
	f.record("FetchRoutes")
	if f.RoutesErr != nil {
		return nil, f.RoutesErr
	}
	return f.Routes, nil
}

func (f *Fake) FetchForecast(ctx context.Context, platformID models.ID) ([]models.ForecastEntry, error) {
	f.record("FetchForecast")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Failing[platformID]; err != nil {
		return nil, err
	}
	return f.Forecasts[platformID], nil
}

func (f *Fake) FetchRoutePath(ctx context.Context, routeID models.ID, direction int) (*models.RoutePath, error) {
	f.record("FetchRoutePath")
	f.mu.Lock()
	defer f.mu.Unlock()
	key := PathKey(routeID, direction)
	if err := f.PathErrors[key]; err != nil {
		return nil, err
	}
	return f.Paths[key], nil
}

// Package forecast turns raw per-platform arrival predictions into the
// grouped text forecast shown to users.
package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/catouberos/transit-forecast/internal/messages"
	"github.com/catouberos/transit-forecast/internal/models"
	"github.com/catouberos/transit-forecast/internal/provider"
	"github.com/catouberos/transit-forecast/internal/routepath"
)

const (
	DefaultMaxTimes    = 4
	DefaultConcurrency = 4
)

type DataStore interface {
	EnsureLoaded(ctx context.Context) bool
	FindRouteByID(id models.ID) (models.Route, bool)
}

type PathResolver interface {
	RoutePath(ctx context.Context, routeID models.ID, direction int) (*models.RoutePath, error)
}

type Options struct {
	MaxTimes    int
	Concurrency int
}

type Aggregator struct {
	provider    provider.Provider
	store       DataStore
	paths       PathResolver
	maxTimes    int
	concurrency int
}

func New(p provider.Provider, store DataStore, paths PathResolver, opts Options) *Aggregator {
	a := &Aggregator{
		provider:    p,
		store:       store,
		paths:       paths,
		maxTimes:    opts.MaxTimes,
		concurrency: opts.Concurrency,
	}
	if a.maxTimes <= 0 {
		a.maxTimes = DefaultMaxTimes
	}
	if a.concurrency <= 0 {
		a.concurrency = DefaultConcurrency
	}
	return a
}

// StopForecast builds the forecast text for every platform of stop. A failed
// platform is reported inline and never hides the others.
func (a *Aggregator) StopForecast(ctx context.Context, stop models.Stop) string {
	if !a.store.EnsureLoaded(ctx) {
		return messages.DataLoadError
	}

	sections := make([]string, len(stop.Platforms))

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, platform := range stop.Platforms {
		g.Go(func() error {
			sections[i] = a.platformSection(ctx, platform.ID)
			return nil
		})
	}
	_ = g.Wait()

	header := fmt.Sprintf("🚏 %s #%s\n\n", stop.Title, stop.ID)
	body := strings.Join(sections, "")
	if body == "" {
		return header + messages.NoForecastData
	}
	return header + body
}

func (a *Aggregator) platformSection(ctx context.Context, platformID models.ID) string {
	entries, err := a.provider.FetchForecast(ctx, platformID)
	if err != nil {
		slog.Error("Error processing platform", "platform", platformID, "error", err)
		return fmt.Sprintf(messages.PlatformError, platformID) + "\n\n"
	}

	if len(entries) == 0 {
		return ""
	}

	return formatDestinations(platformID, a.group(ctx, platformID, entries), a.maxTimes)
}

// group collects arrivals by next stop and route. Entries whose route path
// cannot be resolved are dropped: without it there is no next stop to group by.
func (a *Aggregator) group(ctx context.Context, platformID models.ID, entries []models.ForecastEntry) destinations {
	groups := destinations{}

	for _, entry := range entries {
		title := entry.RouteID.String()
		if route, ok := a.store.FindRouteByID(entry.RouteID); ok && route.Title != "" {
			title = route.Title
		}

		path, err := a.paths.RoutePath(ctx, entry.RouteID, entry.Direction)
		if err != nil {
			slog.Warn("Cannot resolve route path", "route", entry.RouteID, "direction", entry.Direction, "error", err)
			continue
		}
		if path == nil {
			slog.Debug("No route path", "route", entry.RouteID, "direction", entry.Direction)
			continue
		}

		next := routepath.NextStopName(path, platformID)
		if next == "" {
			next = messages.UnknownStop
		}

		g := groups.route(next, entry.RouteID)
		if g.title == "" {
			g.title = title
			g.transport = entry.TransportType
		}
		for _, m := range entry.Markers {
			g.minutes = append(g.minutes, Minutes(m.PredictSeconds))
		}
	}

	return groups
}

// Minutes converts a prediction in seconds to whole minutes, rounding half
// up. Negative predictions count as arriving now.
func Minutes(seconds float64) int {
	m := int(math.Floor(seconds/60 + 0.5))
	if m < 0 {
		return 0
	}
	return m
}

// PlatformForecast lists every predicted arrival at a single platform.
func (a *Aggregator) PlatformForecast(ctx context.Context, platformID models.ID) string {
	if !a.store.EnsureLoaded(ctx) {
		slog.Warn("Platform forecast without route titles", "platform", platformID)
	}

	entries, err := a.provider.FetchForecast(ctx, platformID)
	if err != nil {
		slog.Error("Error fetching platform forecast", "platform", platformID, "error", err)
		return messages.GeneralError
	}

	if len(entries) == 0 {
		return messages.NoForecastData
	}

	var b strings.Builder
	fmt.Fprintf(&b, messages.PlatformHeader, platformID)
	for _, entry := range entries {
		title := entry.RouteID.String()
		if route, ok := a.store.FindRouteByID(entry.RouteID); ok && route.Title != "" {
			title = route.Title
		}
		for _, m := range entry.Markers {
			fmt.Fprintf(&b, "%s %s: %s %s\n", entry.TransportType.Glyph(), title, messages.ArrivesIn, FormatTime(Minutes(m.PredictSeconds)))
		}
	}
	return b.String()
}

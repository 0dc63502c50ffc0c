package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"runtime/debug"
	"strings"

	"github.com/catouberos/transit-forecast/internal/messages"
	"github.com/catouberos/transit-forecast/internal/models"
	"github.com/catouberos/transit-forecast/internal/provider"
)

const DefaultMaxSearchResults = 5

var stopIDPattern = regexp.MustCompile(`^#(\d+)`)

// Query is a single user request, whatever transport it arrived on.
type Query struct {
	UserID int64
	ChatID int64
	Text   string
}

// Reply holds the messages to send back, in order.
type Reply struct {
	ChatID   int64
	Messages []string
}

type DataStore interface {
	EnsureLoaded(ctx context.Context) bool
	SearchStops(query string) []models.Stop
	FindStopByID(id models.ID) (models.Stop, bool)
	FindRoutesByTitle(title string) []models.Route
	Routes() []models.Route
	Refresh(ctx context.Context) (stops, routes int, err error)
}

type Forecaster interface {
	StopForecast(ctx context.Context, stop models.Stop) string
	PlatformForecast(ctx context.Context, platformID models.ID) string
}

type PathCache interface {
	Clear() error
}

type Options struct {
	Admins           Admins
	MaxSearchResults int
}

type Dispatcher struct {
	store      DataStore
	forecaster Forecaster
	paths      PathCache
	admins     Admins
	maxResults int
}

func New(store DataStore, forecaster Forecaster, paths PathCache, opts Options) *Dispatcher {
	d := &Dispatcher{
		store:      store,
		forecaster: forecaster,
		paths:      paths,
		admins:     opts.Admins,
		maxResults: opts.MaxSearchResults,
	}
	if d.maxResults <= 0 {
		d.maxResults = DefaultMaxSearchResults
	}
	return d
}

// Handle answers q. It always produces at least one message: failures and
// panics are turned into user-facing error texts.
func (d *Dispatcher) Handle(ctx context.Context, q Query) (reply Reply) {
	reply.ChatID = q.ChatID

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Recovered from panic while handling query", "text", q.Text, "panic", r, "stack", string(debug.Stack()))
			reply.Messages = []string{messages.BotError}
		}
	}()

	reply.Messages = d.dispatch(ctx, q)
	if len(reply.Messages) == 0 {
		reply.Messages = []string{messages.BotError}
	}
	return reply
}

func (d *Dispatcher) dispatch(ctx context.Context, q Query) []string {
	text := strings.TrimSpace(q.Text)

	if strings.HasPrefix(text, "/") {
		command, arg := parseCommand(text)
		return d.command(ctx, q, command, arg)
	}

	if text == "" {
		return []string{messages.EmptyText}
	}

	if !d.store.EnsureLoaded(ctx) {
		return []string{messages.DataLoadError}
	}

	if m := stopIDPattern.FindStringSubmatch(text); m != nil {
		return d.stopByHashID(ctx, models.ID(m[1]))
	}

	return d.search(ctx, text)
}

// parseCommand splits "/cmd@bot arg" into "/cmd" and the argument with any
// '#' removed.
func parseCommand(text string) (command, arg string) {
	command, arg, _ = strings.Cut(text, " ")
	command, _, _ = strings.Cut(command, "@")
	arg = strings.TrimSpace(strings.ReplaceAll(arg, "#", ""))
	return strings.ToLower(command), arg
}

func (d *Dispatcher) command(ctx context.Context, q Query, command, arg string) []string {
	switch command {
	case "/start":
		return []string{messages.Start}
	case "/help":
		return []string{messages.Help}
	case "/refresh":
		return d.refresh(ctx, q.UserID)
	}

	usage := map[string]string{
		"/search":   messages.SearchUsage,
		"/stop":     messages.StopUsage,
		"/platform": messages.PlatformUsage,
		"/route":    messages.RouteUsage,
	}
	if hint, ok := usage[command]; ok && arg == "" {
		return []string{hint}
	}

	switch command {
	case "/search", "/stop", "/route", "/routes", "/platform":
	default:
		return []string{messages.Help}
	}

	if !d.store.EnsureLoaded(ctx) {
		return []string{messages.DataLoadError}
	}

	switch command {
	case "/search":
		return []string{formatStopsList(d.store.SearchStops(arg), true)}
	case "/stop":
		stop, ok := d.store.FindStopByID(models.ID(arg))
		if !ok {
			return []string{messages.NoStopFound}
		}
		return []string{d.forecaster.StopForecast(ctx, stop)}
	case "/platform":
		return []string{d.forecaster.PlatformForecast(ctx, models.ID(arg))}
	case "/routes":
		return []string{formatRoutesSummary(d.store.Routes())}
	default:
		return []string{d.route(arg)}
	}
}

func (d *Dispatcher) stopByHashID(ctx context.Context, id models.ID) []string {
	stop, ok := d.store.FindStopByID(id)
	if !ok {
		return []string{fmt.Sprintf(messages.StopIDNotFound, id)}
	}
	return []string{d.forecaster.StopForecast(ctx, stop)}
}

func (d *Dispatcher) search(ctx context.Context, text string) []string {
	stops := d.store.SearchStops(text)

	switch {
	case len(stops) == 0:
		return []string{messages.SearchTips}
	case len(stops) > d.maxResults:
		return []string{fmt.Sprintf(messages.TooManyResults, len(stops))}
	case len(stops) > 1:
		return []string{fmt.Sprintf(messages.MultipleStops, formatStopsList(stops, true), stops[0].ID)}
	default:
		return []string{d.forecaster.StopForecast(ctx, stops[0])}
	}
}

func (d *Dispatcher) route(title string) string {
	routes := d.store.FindRoutesByTitle(title)
	if len(routes) == 0 {
		return messages.NoRouteFound
	}

	var b strings.Builder
	fmt.Fprintf(&b, messages.RoutesFound, title)
	for _, route := range routes {
		b.WriteString(formatRouteInfo(route))
		b.WriteString("\n\n")
	}
	return b.String()
}

func (d *Dispatcher) refresh(ctx context.Context, userID int64) []string {
	if userID == 0 {
		return []string{messages.UnknownUser}
	}
	if !d.admins.IsAuthorized(userID) {
		slog.Warn("Unauthorized refresh attempt", "user", userID)
		return []string{messages.AccessDenied}
	}

	if err := d.paths.Clear(); err != nil {
		slog.Warn("Cannot clear route path cache", "error", err)
	}

	stops, routes, err := d.store.Refresh(ctx)
	if err != nil {
		slog.Error("Error refreshing data", "user", userID, "error", err)
		if errors.Is(err, provider.ErrUnexpectedShape) {
			return []string{messages.RefreshStart, messages.DataLoadError}
		}
		return []string{messages.RefreshStart, messages.RefreshError}
	}

	slog.Info("Refreshed data", "user", userID, "stops", stops, "routes", routes)
	return []string{messages.RefreshStart, fmt.Sprintf(messages.RefreshSuccess, stops, routes)}
}

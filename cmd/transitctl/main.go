package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/rodaine/table"

	"github.com/catouberos/transit-forecast/internal/cache"
	"github.com/catouberos/transit-forecast/internal/config"
	"github.com/catouberos/transit-forecast/internal/forecast"
	"github.com/catouberos/transit-forecast/internal/models"
	"github.com/catouberos/transit-forecast/internal/provider"
	"github.com/catouberos/transit-forecast/internal/routepath"
	"github.com/catouberos/transit-forecast/internal/store"
)

var (
	flagConfig  = flag.String("config", "", "path to config.yml")
	flagVerbose = flag.Bool("verbose", false, "enable debug logging")
)

const usage = `usage: transitctl [flags] <command> [argument]

commands:
  search <query>    find stops by name
  stop <id>         forecast for a stop
  platform <id>     raw arrivals at a platform
  routes            list all routes
  route <number>    routes with the given number
`

type app struct {
	out        io.Writer
	provider   provider.Provider
	store      *store.Store
	aggregator *forecast.Aggregator
}

func main() {
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	slog.SetLogLoggerLevel(slog.LevelWarn)
	if *flagVerbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		log.Fatal(err)
	}

	a, err := newApp(cfg)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	command := flag.Arg(0)
	arg := strings.TrimSpace(strings.Join(flag.Args()[1:], " "))

	if err := a.run(ctx, command, arg); err != nil {
		log.Fatal(err)
	}
}

func newApp(cfg *config.AppConfig) (*app, error) {
	p := provider.New(provider.Options{
		BaseURL: cfg.Provider.BaseURL,
		APIKey:  cfg.Provider.APIKey,
		Version: cfg.Provider.Version,
		Format:  cfg.Provider.Format,
		Timeout: cfg.Provider.Timeout,
	})

	opts := cache.Options{Backend: cfg.Cache.Backend, Dir: cfg.Cache.Dir, Size: cfg.Cache.Size}
	stopsCache, err := cache.New[[]models.Stop]("stops", cfg.Cache.StopsTTL, opts)
	if err != nil {
		return nil, err
	}
	routesCache, err := cache.New[[]models.Route]("routes", cfg.Cache.RoutesTTL, opts)
	if err != nil {
		return nil, err
	}
	pathCache, err := cache.New[models.RoutePath]("trassa", cfg.Cache.RoutePathTTL, opts)
	if err != nil {
		return nil, err
	}

	s := store.New(p, stopsCache, routesCache)
	return &app{
		out:      os.Stdout,
		provider: p,
		store:    s,
		aggregator: forecast.New(p, s, routepath.New(p, pathCache), forecast.Options{
			MaxTimes:    cfg.Forecast.MaxTimes,
			Concurrency: cfg.Forecast.Concurrency,
		}),
	}, nil
}

func (a *app) run(ctx context.Context, command, arg string) error {
	needsArg := map[string]bool{"search": true, "stop": true, "platform": true, "route": true}
	if needsArg[command] && arg == "" {
		return fmt.Errorf("%s: missing argument", command)
	}

	// platform arrivals only use route titles when they are available
	if !a.store.EnsureLoaded(ctx) && command != "platform" {
		return fmt.Errorf("cannot load stops and routes")
	}

	switch command {
	case "search":
		a.printStops(a.store.SearchStops(arg))
	case "stop":
		stop, ok := a.store.FindStopByID(models.ID(strings.TrimPrefix(arg, "#")))
		if !ok {
			return fmt.Errorf("stop %s not found", arg)
		}
		fmt.Fprint(a.out, a.aggregator.StopForecast(ctx, stop))
	case "platform":
		entries, err := a.provider.FetchForecast(ctx, models.ID(arg))
		if err != nil {
			return err
		}
		a.printArrivals(entries)
	case "routes":
		a.printRoutes(a.store.Routes())
	case "route":
		routes := a.store.FindRoutesByTitle(arg)
		if len(routes) == 0 {
			return fmt.Errorf("route %s not found", arg)
		}
		a.printRoutes(routes)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

func (a *app) printStops(stops []models.Stop) {
	tbl := table.New("ID", "Остановка", "Платформы").WithWriter(a.out)
	for _, stop := range stops {
		platforms := make([]string, len(stop.Platforms))
		for i, p := range stop.Platforms {
			platforms[i] = p.ID.String()
		}
		tbl.AddRow(stop.ID, stop.Title, strings.Join(platforms, ", "))
	}
	tbl.Print()
}

func (a *app) printRoutes(routes []models.Route) {
	tbl := table.New("ID", "Номер", "Тип", "Направление", "Стоимость").WithWriter(a.out)
	for _, route := range routes {
		tbl.AddRow(route.ID, route.Title, route.TransportType.FullName(), route.NameBegin+" - "+route.NameEnd, strconv.FormatFloat(route.Fare, 'f', -1, 64))
	}
	tbl.Print()
}

func (a *app) printArrivals(entries []models.ForecastEntry) {
	tbl := table.New("Маршрут", "Тип", "Направление", "Прибытие").WithWriter(a.out)
	for _, entry := range entries {
		title := entry.RouteID.String()
		if route, ok := a.store.FindRouteByID(entry.RouteID); ok {
			title = route.Title
		}
		for _, m := range entry.Markers {
			tbl.AddRow(title, entry.TransportType.Name(), entry.Direction, forecast.FormatTime(forecast.Minutes(m.PredictSeconds)))
		}
	}
	tbl.Print()
}

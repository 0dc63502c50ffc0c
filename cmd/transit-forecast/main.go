package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wagslane/go-rabbitmq"

	"github.com/catouberos/transit-forecast/internal/api"
	"github.com/catouberos/transit-forecast/internal/cache"
	"github.com/catouberos/transit-forecast/internal/config"
	"github.com/catouberos/transit-forecast/internal/crawler"
	"github.com/catouberos/transit-forecast/internal/forecast"
	"github.com/catouberos/transit-forecast/internal/handler"
	"github.com/catouberos/transit-forecast/internal/models"
	"github.com/catouberos/transit-forecast/internal/provider"
	"github.com/catouberos/transit-forecast/internal/queues"
	"github.com/catouberos/transit-forecast/internal/routepath"
	"github.com/catouberos/transit-forecast/internal/store"
)

const shutdownTimeout = 10 * time.Second

var (
	flagConfig  = flag.String("config", "", "path to config.yml")
	flagVerbose = flag.Bool("verbose", false, "enable debug logging")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		log.Fatal(err)
	}
	setupLogging(cfg.Log, *flagVerbose)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// listen for interrupt signal to gracefully shutdown the application
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		slog.Info("Shutdown signal received")
		cancel()
	}()

	// data setup
	p := provider.New(provider.Options{
		BaseURL: cfg.Provider.BaseURL,
		APIKey:  cfg.Provider.APIKey,
		Version: cfg.Provider.Version,
		Format:  cfg.Provider.Format,
		Timeout: cfg.Provider.Timeout,
	})

	cacheOpts := cache.Options{
		Backend: cfg.Cache.Backend,
		Dir:     cfg.Cache.Dir,
		Size:    cfg.Cache.Size,
	}
	stopsCache, err := cache.New[[]models.Stop]("stops", cfg.Cache.StopsTTL, cacheOpts)
	if err != nil {
		log.Fatal(err)
	}
	routesCache, err := cache.New[[]models.Route]("routes", cfg.Cache.RoutesTTL, cacheOpts)
	if err != nil {
		log.Fatal(err)
	}
	pathCache, err := cache.New[models.RoutePath]("trassa", cfg.Cache.RoutePathTTL, cacheOpts)
	if err != nil {
		log.Fatal(err)
	}

	s := store.New(p, stopsCache, routesCache)
	paths := routepath.New(p, pathCache)
	aggregator := forecast.New(p, s, paths, forecast.Options{
		MaxTimes:    cfg.Forecast.MaxTimes,
		Concurrency: cfg.Forecast.Concurrency,
	})
	dispatcher := handler.New(s, aggregator, paths, handler.Options{
		Admins:           handler.Admins(cfg.Admins),
		MaxSearchResults: cfg.Forecast.MaxSearchResults,
	})

	firstRefresh := cfg.Refresh.Interval
	if !s.EnsureLoaded(ctx) {
		slog.Warn("Initial data load failed, serving with empty data until the next refresh")
		firstRefresh = cfg.Refresh.Retry
	}

	// periodic refresh setup
	if cfg.Refresh.Interval > 0 {
		refresher := crawler.New(ctx, "refresh", cfg.Refresh.Interval, func(ctx context.Context) error {
			stops, routes, err := s.Reload(ctx)
			if err == nil {
				slog.Info("Reloaded data", "stops", stops, "routes", routes)
			}
			return err
		}, crawler.Options{Delay: firstRefresh, Retry: cfg.Refresh.Retry})
		defer refresher.Close()
	}

	// http setup
	server := api.New(p, s, aggregator, dispatcher, cfg.Server.Port)
	go func() {
		if err := server.ListenAndServe(); err != nil {
			slog.Error("Error starting HTTP API", "error", err)
		}

		cancel()
	}()

	// queue setup
	if cfg.AMQP.Enabled {
		conn, err := rabbitmq.NewConn(
			cfg.AMQP.URL,
			rabbitmq.WithConnectionOptionsLogging,
		)
		if err != nil {
			log.Fatal(err)
		}
		defer conn.Close()

		replies := queues.New(cfg.AMQP.URL, queues.Topology{
			ReplyExchange: cfg.AMQP.ReplyExchange,
			QueryQueue:    cfg.AMQP.QueryQueue,
		})
		defer replies.Close()

		go func() {
			err := handler.ConsumeQueries(ctx, conn, replies.Topology().QueryQueue, cfg.AMQP.Concurrency, dispatcher, replies)
			if err != nil {
				slog.Error("Error starting query consumer", "error", err)
			}

			cancel()
		}()
	}

	<-ctx.Done()

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Error shutting down HTTP API", "error", err)
	}
}

func setupLogging(cfg config.LogConfig, verbose bool) {
	level := cfg.LogLevel()
	if verbose {
		level = slog.LevelDebug
	}

	if cfg.Format == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
		return
	}
	slog.SetLogLoggerLevel(level)
}

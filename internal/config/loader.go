// Package config loads the service configuration from config.yml and the
// environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	EnvAPIToken = "NSKGORTRANS_API_TOKEN"
	EnvAdmins   = "ADMIN_USER_IDS"
	EnvAMQPURL  = "AMQP_URL"
)

var searchPaths = []string{"config.yml", "./config/config.yml"}

// Default returns the configuration used when no file overrides it.
func Default() AppConfig {
	return AppConfig{
		Server: ServerConfig{Port: 8080},
		Provider: ProviderConfig{
			BaseURL: "https://api.nskgortrans.ru",
			Version: "0.5",
			Format:  "json",
			Timeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			Backend:      "file",
			Dir:          "cache",
			StopsTTL:     time.Hour,
			RoutesTTL:    time.Hour,
			RoutePathTTL: 24 * time.Hour,
		},
		AMQP: AMQPConfig{
			QueryQueue:    "forecast.query",
			ReplyExchange: "forecast.reply",
			Concurrency:   4,
		},
		Forecast: ForecastConfig{
			MaxTimes:         4,
			MaxSearchResults: 5,
			Concurrency:      4,
		},
		Refresh: RefreshConfig{
			Interval: time.Hour,
			Retry:    30 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads the configuration at path, or the first of the default search
// paths when path is empty. Without any file the defaults are used.
// Environment variables take precedence over the file.
func Load(path string) (*AppConfig, error) {
	cfg := Default()

	data, source, err := read(path)
	if err != nil {
		return nil, err
	}
	if data != nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", source, err)
		}
		slog.Debug("Loaded config file", "path", source)
	}

	if err := applyEnvironment(&cfg); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func read(path string) ([]byte, string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", err
		}
		return data, path, nil
	}

	for _, p := range searchPaths {
		data, err := os.ReadFile(p)
		if err == nil {
			return data, p, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, "", err
		}
	}
	return nil, "", nil
}

func applyEnvironment(cfg *AppConfig) error {
	token, err := FromEnvironment(EnvAPIToken)
	if err != nil {
		var missing MissingEnvironmentKey
		if !errors.As(err, &missing) {
			return err
		}
	}
	if token != "" {
		cfg.Provider.APIKey = token
	}

	if v, ok := os.LookupEnv(EnvAdmins); ok {
		cfg.Admins = ParseAdmins(v)
	}

	if v := os.Getenv(EnvAMQPURL); v != "" {
		cfg.AMQP.URL = v
	}

	return nil
}

// ParseAdmins parses a comma separated list of user ids, skipping anything
// that is not a number.
func ParseAdmins(s string) []int64 {
	admins := []int64{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			slog.Warn("Skipping invalid admin id", "value", part)
			continue
		}
		admins = append(admins, id)
	}
	return admins
}

// LogLevel maps the configured level name to a slog level.
func (c LogConfig) LogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

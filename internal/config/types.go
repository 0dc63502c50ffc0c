package config

import "time"

// ServerConfig contains HTTP API configuration
type ServerConfig struct {
	Port int `yaml:"port" validate:"gte=0,lte=65535"`
}

// ProviderConfig contains upstream transit API configuration
type ProviderConfig struct {
	BaseURL string        `yaml:"baseURL" validate:"omitempty,url"`
	Version string        `yaml:"version"`
	Format  string        `yaml:"format" validate:"omitempty,oneof=json"`
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`

	// APIKey is read from the environment only.
	APIKey string `yaml:"-" validate:"required"`
}

// CacheConfig contains cache backend and TTL configuration
type CacheConfig struct {
	Backend      string        `yaml:"backend" validate:"omitempty,oneof=file memory"`
	Dir          string        `yaml:"dir"`
	Size         int           `yaml:"size" validate:"gte=0"`
	StopsTTL     time.Duration `yaml:"stopsTTL" validate:"gte=0"`
	RoutesTTL    time.Duration `yaml:"routesTTL" validate:"gte=0"`
	RoutePathTTL time.Duration `yaml:"routePathTTL" validate:"gte=0"`
}

// AMQPConfig contains query queue and reply exchange configuration
type AMQPConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url" validate:"required_if=Enabled true"`
	QueryQueue    string `yaml:"queryQueue"`
	ReplyExchange string `yaml:"replyExchange"`
	Concurrency   int    `yaml:"concurrency" validate:"gte=0"`
}

// ForecastConfig contains forecast rendering limits
type ForecastConfig struct {
	MaxTimes         int `yaml:"maxTimes" validate:"gte=0"`
	MaxSearchResults int `yaml:"maxSearchResults" validate:"gte=0"`
	Concurrency      int `yaml:"concurrency" validate:"gte=0"`
}

// RefreshConfig contains background reload configuration; a zero interval
// disables it
type RefreshConfig struct {
	Interval time.Duration `yaml:"interval" validate:"gte=0"`
	Retry    time.Duration `yaml:"retry" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Provider ProviderConfig `yaml:"provider"`
	Cache    CacheConfig    `yaml:"cache"`
	AMQP     AMQPConfig     `yaml:"amqp"`
	Forecast ForecastConfig `yaml:"forecast"`
	Refresh  RefreshConfig  `yaml:"refresh"`
	Log      LogConfig      `yaml:"log"`
	Admins   []int64        `yaml:"admins"`
}

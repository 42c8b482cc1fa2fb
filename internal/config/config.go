package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	BookingAPI struct {
		BaseURL         string `yaml:"base_url"`
		TimeoutSeconds  int    `yaml:"timeout_seconds"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
		RatePerSecond   float64 `yaml:"rate_per_second"`
		RateBurst       int    `yaml:"rate_burst"`
	} `yaml:"booking_api"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Booking struct {
		Timezone              string `yaml:"timezone"`
		RefreshSeconds        int    `yaml:"refresh_seconds"`
		SessionTimeoutMinutes int    `yaml:"session_timeout_minutes"`
	} `yaml:"booking"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.BookingAPI.BaseURL == "" {
		cfg.BookingAPI.BaseURL = "http://localhost:8000/api"
	}
	if cfg.Booking.Timezone == "" {
		cfg.Booking.Timezone = "America/Mexico_City"
	}

	return &cfg, nil
}

// APITimeout returns the HTTP timeout for calls to the booking API.
func (c *Config) APITimeout() time.Duration {
	if c.BookingAPI.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.BookingAPI.TimeoutSeconds) * time.Second
}

// CacheTTL returns the Redis cache TTL; 0 disables caching.
func (c *Config) CacheTTL() time.Duration {
	if c.BookingAPI.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.BookingAPI.CacheTTLSeconds) * time.Second
}

// RefreshInterval returns the snapshot refresh period.
func (c *Config) RefreshInterval() time.Duration {
	if c.Booking.RefreshSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Booking.RefreshSeconds) * time.Second
}

// SessionTimeout returns the booking session expiry.
func (c *Config) SessionTimeout() time.Duration {
	if c.Booking.SessionTimeoutMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.Booking.SessionTimeoutMinutes) * time.Minute
}

// Location resolves the configured reference timezone. Both "is the
// selected date today" and the same-day cutoff use this single zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Booking.Timezone)
}

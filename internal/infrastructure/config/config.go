// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	window := cfg.Matching.RideWindowDays
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default endpoints for the ledger and the activity providers.
const (
	DefaultMonarchEndpoint   = "https://api.monarch.com/graphql"
	DefaultUberRidesEndpoint = "https://riders.uber.com/graphql"
	DefaultUberEatsEndpoint  = "https://www.ubereats.com/_p/api/getPastOrdersV1"
	DefaultBayWheelsEndpoint = "https://account.baywheels.com/bikesharefe-gql"
)

// Config represents the entire application configuration
type Config struct {
	Monarch       MonarchConfig       `yaml:"monarch"`
	Providers     ProvidersConfig     `yaml:"providers"`
	Credentials   CredentialsConfig   `yaml:"credentials"`
	Matching      MatchingConfig      `yaml:"matching"`
	Locations     LocationsConfig     `yaml:"locations"`
	Storage       StorageConfig       `yaml:"storage"`
	API           APIConfig           `yaml:"api"`
	Observability ObservabilityConfig `yaml:"observability"`

	// Timezone is the IANA zone used to turn provider timestamps into
	// calendar dates. Empty means the local zone.
	Timezone string `yaml:"timezone"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// MonarchConfig holds Monarch Money API configuration
type MonarchConfig struct {
	Endpoint    string   `yaml:"endpoint"`
	APIKey      string   `yaml:"api_key"` // used when no captured session exists
	Limit       int      `yaml:"limit"`   // pending transactions per run
	MerchantIDs []string `yaml:"merchant_ids"`
	RateLimit   string   `yaml:"rate_limit"`
}

// ProvidersConfig holds provider-specific configuration
type ProvidersConfig struct {
	UberRides ProviderConfig `yaml:"uber_rides"`
	UberEats  ProviderConfig `yaml:"uber_eats"`
	BayWheels ProviderConfig `yaml:"baywheels"`
}

// ProviderConfig holds the settings shared by every activity provider.
type ProviderConfig struct {
	Enabled             bool   `yaml:"enabled"`
	Endpoint            string `yaml:"endpoint"`
	MaxPages            int    `yaml:"max_pages"`
	PageSize            int    `yaml:"page_size"`
	RateLimit           string `yaml:"rate_limit"` // minimum gap between requests, e.g. "250ms"
	DetailConcurrency   int    `yaml:"detail_concurrency"`
	LookbackPaddingDays int    `yaml:"lookback_padding_days"`
}

// Interval parses RateLimit. An empty or invalid value means no limit.
func (p ProviderConfig) Interval() time.Duration {
	return parseInterval(p.RateLimit)
}

// Interval parses RateLimit. An empty or invalid value means no limit.
func (m MonarchConfig) Interval() time.Duration {
	return parseInterval(m.RateLimit)
}

func parseInterval(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// CredentialsConfig points at the captured session headers.
type CredentialsConfig struct {
	Path string `yaml:"path"`
}

// MatchingConfig holds the matching windows and tolerance bands.
type MatchingConfig struct {
	RideWindowDays       int     `yaml:"ride_window_days"`
	TipWindowDays        int     `yaml:"tip_window_days"`
	DeliveryWindowDays   int     `yaml:"delivery_window_days"`
	BikeShareWindowDays  int     `yaml:"bike_share_window_days"`
	RideMinTolerance     float64 `yaml:"ride_min_tolerance"`
	DeliveryMinTolerance float64 `yaml:"delivery_min_tolerance"`
	TolerancePercent     float64 `yaml:"tolerance_percent"`
	BikeShareSumEpsilon  float64 `yaml:"bike_share_sum_epsilon"`
	RecentTripDays       int     `yaml:"recent_trip_days"`
}

// LocationsConfig seeds the alias table on first run.
type LocationsConfig struct {
	Aliases   map[string]string `yaml:"aliases"`
	HomeNames []string          `yaml:"home_names"`
}

// APIConfig holds the review server settings.
type APIConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a config with every default filled in.
func Default() *Config {
	return &Config{
		Monarch: MonarchConfig{
			Endpoint: DefaultMonarchEndpoint,
			Limit:    200,
		},
		Providers: ProvidersConfig{
			UberRides: ProviderConfig{
				Enabled:             true,
				Endpoint:            DefaultUberRidesEndpoint,
				MaxPages:            5,
				PageSize:            50,
				RateLimit:           "250ms",
				DetailConcurrency:   4,
				LookbackPaddingDays: 5,
			},
			UberEats: ProviderConfig{
				Enabled:             true,
				Endpoint:            DefaultUberEatsEndpoint,
				MaxPages:            100,
				RateLimit:           "250ms",
				LookbackPaddingDays: 5,
			},
			BayWheels: ProviderConfig{
				Enabled:             true,
				Endpoint:            DefaultBayWheelsEndpoint,
				MaxPages:            20,
				RateLimit:           "250ms",
				DetailConcurrency:   4,
				LookbackPaddingDays: 5,
			},
		},
		Credentials: CredentialsConfig{
			Path: "credentials.yaml",
		},
		Matching: MatchingConfig{
			RideWindowDays:       2,
			TipWindowDays:        14,
			DeliveryWindowDays:   5,
			BikeShareWindowDays:  5,
			RideMinTolerance:     2.50,
			DeliveryMinTolerance: 0.50,
			TolerancePercent:     0.10,
			BikeShareSumEpsilon:  1e-9,
			RecentTripDays:       120,
		},
		Storage: StorageConfig{
			DatabasePath: "rideshare_sync.db",
		},
		API: APIConfig{
			Port: 8085,
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  "info",
				Format: "text",
			},
		},
	}
}

// Load reads and parses the config file. Keys missing from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${MONARCH_TOKEN})
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := Default()
	cfg.Storage.DatabasePath = getEnv("RIDESHARE_DB_PATH", cfg.Storage.DatabasePath)
	cfg.Monarch.APIKey = os.Getenv("MONARCH_TOKEN")
	cfg.Monarch.Limit = getEnvInt("MONARCH_LIMIT", cfg.Monarch.Limit)
	cfg.Credentials.Path = getEnv("RIDESHARE_CREDENTIALS_PATH", cfg.Credentials.Path)
	cfg.API.Port = getEnvInt("RIDESHARE_API_PORT", cfg.API.Port)
	cfg.Timezone = os.Getenv("RIDESHARE_TIMEZONE")
	cfg.Observability.Logging.Level = getEnv("LOG_LEVEL", cfg.Observability.Logging.Level)
	cfg.Observability.Logging.Format = getEnv("LOG_FORMAT", cfg.Observability.Logging.Format)
	if origins := os.Getenv("RIDESHARE_ALLOWED_ORIGINS"); origins != "" {
		cfg.API.AllowedOrigins = strings.Split(origins, ",")
	}
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnv_WithPath("config.yaml")
}

// LoadOrEnv_WithPath tries to load from specified path, falls back to environment variables
func LoadOrEnv_WithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

// GetAPIKey retrieves an API key from config first, then tries multiple environment variable names
// Usage: GetAPIKey(cfg.Monarch.APIKey, "MONARCH_TOKEN")
func (c *Config) GetAPIKey(configValue string, envVarNames ...string) string {
	if configValue != "" {
		return configValue
	}

	for _, envVar := range envVarNames {
		if val := os.Getenv(envVar); val != "" {
			return val
		}
	}

	return ""
}

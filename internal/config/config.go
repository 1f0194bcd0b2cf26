package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FetchConfig tunes the data API client. Intervals are milliseconds.
type FetchConfig struct {
	MaxRetries        int `yaml:"max_retries"`
	InitialIntervalMS int `yaml:"initial_interval_ms"`
	MaxIntervalMS     int `yaml:"max_interval_ms"`
}

// InitialInterval returns the initial backoff interval.
func (f FetchConfig) InitialInterval() time.Duration {
	return time.Duration(f.InitialIntervalMS) * time.Millisecond
}

// MaxInterval returns the backoff ceiling.
func (f FetchConfig) MaxInterval() time.Duration {
	return time.Duration(f.MaxIntervalMS) * time.Millisecond
}

// SnapshotConfig controls the scheduled snapshot refresh.
type SnapshotConfig struct {
	Schedule      string   `yaml:"schedule"`
	Installations []string `yaml:"installations"`
	LookbackYears int      `yaml:"lookback_years"`
}

// Config defines service configuration.
type Config struct {
	HTTPAddr       string         `yaml:"http_addr"`
	DataAPIBaseURL string         `yaml:"data_api_base_url"`
	DataAPIToken   string         `yaml:"data_api_token"`
	DatabaseURL    string         `yaml:"database_url"`
	JWTSecret      string         `yaml:"jwt_secret"`
	CORSOrigins    []string       `yaml:"cors_origins"`
	LogLevel       string         `yaml:"log_level"`
	LogPretty      bool           `yaml:"log_pretty"`
	Fetch          FetchConfig    `yaml:"fetch"`
	Snapshots      SnapshotConfig `yaml:"snapshots"`
}

// Load reads configuration from the yaml file named by PVMONITOR_CONFIG,
// then applies environment overrides. Env always wins over yaml so a
// deployment can patch a single value without editing the file.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr: ":8080",
		LogLevel: "info",
		Fetch: FetchConfig{
			MaxRetries:        2,
			InitialIntervalMS: 200,
			MaxIntervalMS:     2000,
		},
		Snapshots: SnapshotConfig{
			Schedule:      "0 4 * * *",
			LookbackYears: 2,
		},
	}

	if path := os.Getenv("PVMONITOR_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if value := os.Getenv("PVMONITOR_HTTP_ADDR"); value != "" {
		cfg.HTTPAddr = value
	}
	if value := os.Getenv("PVMONITOR_DATA_API_BASE_URL"); value != "" {
		cfg.DataAPIBaseURL = value
	}
	if value := os.Getenv("PVMONITOR_DATA_API_TOKEN"); value != "" {
		cfg.DataAPIToken = value
	}
	if value := os.Getenv("DATABASE_URL"); value != "" {
		cfg.DatabaseURL = value
	}
	if value := os.Getenv("PVMONITOR_JWT_SECRET"); value != "" {
		cfg.JWTSecret = value
	}
	if value := os.Getenv("PVMONITOR_CORS_ORIGINS"); value != "" {
		cfg.CORSOrigins = splitCSV(value)
	}
	if value := os.Getenv("PVMONITOR_LOG_LEVEL"); value != "" {
		cfg.LogLevel = value
	}
	if value := os.Getenv("PVMONITOR_LOG_PRETTY"); value != "" {
		cfg.LogPretty = value == "true" || value == "1"
	}
	if value := os.Getenv("PVMONITOR_SNAPSHOT_SCHEDULE"); value != "" {
		cfg.Snapshots.Schedule = value
	}
	if value := os.Getenv("PVMONITOR_SNAPSHOT_INSTALLATIONS"); value != "" {
		cfg.Snapshots.Installations = splitCSV(value)
	}
	if value := os.Getenv("PVMONITOR_SNAPSHOT_LOOKBACK_YEARS"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil && parsed > 0 {
			cfg.Snapshots.LookbackYears = parsed
		}
	}

	if cfg.DataAPIBaseURL == "" {
		return cfg, errors.New("config: data api base url required")
	}
	if cfg.JWTSecret == "" {
		return cfg, errors.New("config: jwt secret required")
	}
	return cfg, nil
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

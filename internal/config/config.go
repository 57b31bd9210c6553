// Package config provides unified configuration loading for the extraction API.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environments the API can run in. Log levels default per environment.
const (
	EnvLocal   = "local"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

// Config holds all configuration for the extraction service.
type Config struct {
	Environment   string              `yaml:"environment"`
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Extraction    ExtractionConfig    `yaml:"extraction"`
	Cache         CacheConfig         `yaml:"cache"`
	Auth          AuthConfig          `yaml:"auth"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// StorageConfig holds object-store settings. Documents are fetched from
// DocsBucket and extracted contents are written to ExtractedBucket.
type StorageConfig struct {
	Endpoint        string        `yaml:"endpoint"`
	DocsBucket      string        `yaml:"docs_bucket"`
	ExtractedBucket string        `yaml:"extracted_bucket"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
}

// ExtractionConfig holds extraction pipeline settings.
type ExtractionConfig struct {
	// Version is stamped into every extracted document.
	Version string `yaml:"version"`
	// MaxConcurrentDocs bounds the batch worker pool. It also bounds the
	// number of simultaneous object-store transfers.
	MaxConcurrentDocs int `yaml:"max_concurrent_docs"`
}

// CacheConfig holds result-cache settings.
type CacheConfig struct {
	Driver     string        `yaml:"driver"` // memory or redis
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	Redis      RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// AuthConfig holds API-key authentication settings.
type AuthConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	ServiceName string `yaml:"service_name"`
}

// Load reads configuration from a YAML file and applies environment overrides.
// An empty path loads defaults plus environment overrides only.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Environment: EnvStaging,
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8080,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     120 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
		},
		Storage: StorageConfig{
			RequestTimeout: 60 * time.Second,
		},
		Extraction: ExtractionConfig{
			Version:           "1.0",
			MaxConcurrentDocs: 5,
		},
		Cache: CacheConfig{
			Driver:     "memory",
			TTL:        24 * time.Hour,
			MaxEntries: 10000,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				DB:       0,
				PoolSize: 10,
			},
		},
		Auth: AuthConfig{
			Enabled: true,
		},
		Observability: ObservabilityConfig{
			LogLevel:    "",
			LogFormat:   "json",
			ServiceName: "foss-api",
		},
	}
}

// LogLevel returns the configured log level, defaulting per environment when
// unset: debug for local and staging, info for prod.
func (c *Config) LogLevel() string {
	if c.Observability.LogLevel != "" {
		return c.Observability.LogLevel
	}
	if c.Environment == EnvProd {
		return "info"
	}
	return "debug"
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvLocal, EnvStaging, EnvProd:
	default:
		return fmt.Errorf("unknown environment %q", c.Environment)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Storage.Endpoint == "" {
		return fmt.Errorf("storage endpoint is required")
	}
	if c.Storage.DocsBucket == "" || c.Storage.ExtractedBucket == "" {
		return fmt.Errorf("storage buckets are required")
	}
	if c.Extraction.MaxConcurrentDocs <= 0 {
		return fmt.Errorf("max_concurrent_docs must be positive")
	}
	switch c.Cache.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown cache driver %q", c.Cache.Driver)
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth is enabled but no API key is configured")
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ENV"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("STORAGE_ENDPOINT"); v != "" {
		cfg.Storage.Endpoint = v
	}
	if v := os.Getenv("DOCS_BUCKET_NAME"); v != "" {
		cfg.Storage.DocsBucket = v
	}
	if v := os.Getenv("EXTRACTED_BUCKET_NAME"); v != "" {
		cfg.Storage.ExtractedBucket = v
	}
	if v := os.Getenv("FOSS_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.Driver = "redis"
		cfg.Cache.Redis.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}

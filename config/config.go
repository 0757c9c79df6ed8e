package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the daemon configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Search   SearchConfig   `mapstructure:"search"`
	Semantic SemanticConfig `mapstructure:"semantic"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	LogLevel string         `mapstructure:"log_level"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	BodyLimit    int           `mapstructure:"body_limit"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type SearchConfig struct {
	TopK            int     `mapstructure:"top_k"`
	MinScore        float64 `mapstructure:"min_score"`
	CoherenceWeight float64 `mapstructure:"coherence_weight"`
	CandidateLimit  int     `mapstructure:"candidate_limit"`
}

// SemanticConfig enables the embedding rerank stage against an
// OpenAI-compatible service.
type SemanticConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Model   string `mapstructure:"model"`
}

type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	MaxEntries int64         `mapstructure:"max_entries"`
	TTL        time.Duration `mapstructure:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load reads the configuration. configPath names an explicit YAML file; when
// empty, icdmapd.yaml is searched for in ., ./config and /etc/icdmap, and a
// missing file is fine. ICDMAP_ environment variables override file values
// either way (ICDMAP_SERVER_PORT=9000 overrides server.port).
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("icdmapd")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/icdmap")
	}

	v.SetEnvPrefix("ICDMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No file found in the search paths; defaults and environment apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Every key gets a default so environment-only overrides are picked up by
// Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8420)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.body_limit", 1<<20)

	v.SetDefault("database.path", "icdmap.db")

	v.SetDefault("search.top_k", 3)
	v.SetDefault("search.min_score", 0.0)
	v.SetDefault("search.coherence_weight", 0.25)
	v.SetDefault("search.candidate_limit", 50)

	v.SetDefault("semantic.enabled", false)
	v.SetDefault("semantic.host", "http://localhost:11434/v1")
	v.SetDefault("semantic.model", "embeddinggemma")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_entries", 10000)
	v.SetDefault("cache.ttl", "5m")

	v.SetDefault("metrics.enabled", true)

	v.SetDefault("log_level", "info")
}

// Validate checks the configuration for values the daemon cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if c.Server.BodyLimit < 1 {
		return fmt.Errorf("%w: server body_limit must be at least 1 byte", ErrInvalidConfig)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database path is required", ErrInvalidConfig)
	}
	if c.Search.TopK < 1 {
		return fmt.Errorf("%w: search top_k must be at least 1", ErrInvalidConfig)
	}
	if c.Search.MinScore < 0 {
		return fmt.Errorf("%w: search min_score cannot be negative", ErrInvalidConfig)
	}
	if c.Search.CoherenceWeight < 0 {
		return fmt.Errorf("%w: search coherence_weight cannot be negative", ErrInvalidConfig)
	}
	if c.Search.CandidateLimit < 1 {
		return fmt.Errorf("%w: search candidate_limit must be at least 1", ErrInvalidConfig)
	}
	if c.Semantic.Enabled {
		if c.Semantic.Host == "" {
			return fmt.Errorf("%w: semantic host is required when semantic is enabled", ErrInvalidConfig)
		}
		if c.Semantic.Model == "" {
			return fmt.Errorf("%w: semantic model is required when semantic is enabled", ErrInvalidConfig)
		}
	}
	if c.Cache.Enabled {
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("%w: cache max_entries must be at least 1", ErrInvalidConfig)
		}
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("%w: cache ttl must be positive", ErrInvalidConfig)
		}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

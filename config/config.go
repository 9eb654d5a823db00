// Package config loads service configuration from a YAML file with
// environment-variable overrides. A .env file next to the binary is
// loaded first when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Limits   LimitsConfig   `yaml:"limits"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port            int `yaml:"port"`
	RequestTimeoutS int `yaml:"request_timeout_s"`
	ShutdownGraceS  int `yaml:"shutdown_grace_s"`
}

// DatabaseConfig holds the Postgres connection string. When DSN is empty
// the service runs on the in-memory store.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// RedisConfig controls the club/round record cache. When Addr is empty
// caching is disabled and all reads hit the store directly.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTLS     int    `yaml:"ttl_s"`
}

// KafkaConfig controls lifecycle event publishing. When Brokers is empty
// events are dropped via the no-op publisher.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// LimitsConfig caps member commit exposure in micro-units. Zero disables
// the corresponding cap.
type LimitsConfig struct {
	MaxCommitPerClubMicros int64 `yaml:"max_commit_per_club_micros"`
	MaxCommitTotalMicros   int64 `yaml:"max_commit_total_micros"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load reads the YAML file at path and applies .env / environment
// overrides on top. A missing file is not an error: the service then
// runs on defaults and environment variables alone.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("config.Load: parse %q: %w", path, err)
			}
		case os.IsNotExist(err):
			// fall through to env + defaults
		default:
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// RequestTimeout returns the per-request timeout as a time.Duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutS) * time.Second
}

// ShutdownGrace returns the graceful-shutdown window as a time.Duration.
func (c *Config) ShutdownGrace() time.Duration {
	return time.Duration(c.Server.ShutdownGraceS) * time.Second
}

// CacheTTL returns the Redis record TTL as a time.Duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Redis.TTLS) * time.Second
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		cfg.Kafka.Topic = v
	}
	if v := os.Getenv("MAX_COMMIT_PER_CLUB_MICROS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Limits.MaxCommitPerClubMicros = n
		}
	}
	if v := os.Getenv("MAX_COMMIT_TOTAL_MICROS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Limits.MaxCommitTotalMicros = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeoutS <= 0 {
		cfg.Server.RequestTimeoutS = 30
	}
	if cfg.Server.ShutdownGraceS <= 0 {
		cfg.Server.ShutdownGraceS = 10
	}
	if cfg.Redis.TTLS <= 0 {
		cfg.Redis.TTLS = 300
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "club-ledger-events"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

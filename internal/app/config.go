package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/arm-gateway/internal/platform/envutil"
	"github.com/yungbote/arm-gateway/internal/platform/logger"
)

// DefaultMainComplectID is the complect every new profile joins.
const DefaultMainComplectID = "3eaef2ac-c041-44ff-b022-377e8b5f8325"

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
	MaxOpen  int    `yaml:"max_open"`
	MaxIdle  int    `yaml:"max_idle"`
}

type RedisConfig struct {
	Addr    string        `yaml:"addr"`
	LockTTL time.Duration `yaml:"lock_ttl"`
}

type OtelSettings struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	Environment string  `yaml:"environment"`
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	Headers     string  `yaml:"headers"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type Config struct {
	Port           int            `yaml:"port"`
	LogMode        string         `yaml:"log_mode"`
	DBDriver       string         `yaml:"db_driver"`
	Postgres       PostgresConfig `yaml:"postgres"`
	SQLitePath     string         `yaml:"sqlite_path"`
	MainComplectID string         `yaml:"main_complect_id"`
	Redis          RedisConfig    `yaml:"redis"`
	JWTSecretKey   string         `yaml:"jwt_secret_key"`
	CORSOrigins    []string       `yaml:"cors_allowed_origins"`
	MetricsEnabled bool           `yaml:"metrics_enabled"`
	Otel           OtelSettings   `yaml:"otel"`
}

// LoadConfig reads the environment, then overlays the YAML file named by
// GATEWAY_CONFIG_FILE. Keys present in the file win.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		Port:           envutil.Int("PORT", 5000),
		LogMode:        envutil.String("LOG_MODE", "development"),
		DBDriver:       strings.ToLower(envutil.String("DB_DRIVER", "postgres")),
		SQLitePath:     envutil.String("SQLITE_PATH", ""),
		MainComplectID: envutil.String("MAIN_COMPLECT_ID", DefaultMainComplectID),
		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", ""),
		CORSOrigins:    envutil.List("CORS_ALLOWED_ORIGINS", nil),
		MetricsEnabled: envutil.Bool("METRICS_ENABLED", true),
		Postgres: PostgresConfig{
			Host:     envutil.String("POSTGRES_HOST", "localhost"),
			Port:     envutil.Int("POSTGRES_PORT", 5432),
			User:     envutil.String("POSTGRES_USER", "postgres"),
			Password: envutil.String("POSTGRES_PASSWORD", ""),
			Name:     envutil.String("POSTGRES_NAME", "arm"),
			SSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
			MaxOpen:  envutil.Int("POSTGRES_MAX_OPEN_CONNS", 20),
			MaxIdle:  envutil.Int("POSTGRES_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			Addr:    envutil.String("REDIS_ADDR", ""),
			LockTTL: envutil.Duration("REDIS_LOCK_TTL", 10*time.Second),
		},
		Otel: OtelSettings{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "arm-gateway"),
			Environment: envutil.String("OTEL_ENVIRONMENT", "development"),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", true),
			Headers:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 1),
		},
	}
	if path := envutil.String("GATEWAY_CONFIG_FILE", ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
		if log != nil {
			log.Info("config file applied", "path", path)
		}
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}
	if c.Port <= 0 {
		return fmt.Errorf("PORT must be positive, got %d", c.Port)
	}
	if _, err := c.MainComplect(); err != nil {
		return err
	}
	return nil
}

// MainComplect parses MainComplectID; an empty value disables the join.
func (c Config) MainComplect() (uuid.UUID, error) {
	if strings.TrimSpace(c.MainComplectID) == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(c.MainComplectID))
	if err != nil {
		return uuid.Nil, fmt.Errorf("MAIN_COMPLECT_ID: %w", err)
	}
	return id, nil
}

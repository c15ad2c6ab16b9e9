package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Port       int    `toml:"port"`
	CORSOrigin string `toml:"cors_origin"`
	BodyLimit  int    `toml:"body_limit"` // bytes
	RateLimit  int    `toml:"rate_limit"` // requests per minute per IP
	LogLevel   string `toml:"log_level"`
}

type DatabaseConfig struct {
	URL             string `toml:"url"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // seconds
}

type JWTConfig struct {
	Secret    string `toml:"secret"`
	ExpiresIn int    `toml:"expires_in"` // seconds
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	JWT      JWTConfig      `toml:"jwt"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

// TokenTTL returns the configured token lifetime.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.ExpiresIn) * time.Second
}

// LoadConfig builds the configuration from defaults, an optional TOML file
// and finally environment variables (a .env file is honored when present).
// Environment values win so deployments can override the checked-in file.
func LoadConfig(filepath string) (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:       1412,
			CORSOrigin: "http://localhost:5173",
			BodyLimit:  10 * 1024 * 1024,
			RateLimit:  100,
			LogLevel:   "info",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		JWT: JWTConfig{
			ExpiresIn: 24 * 60 * 60,
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
	}

	if filepath != "" {
		if _, err := os.Stat(filepath); err == nil {
			if _, err := toml.DecodeFile(filepath, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", filepath, err)
			}
		}
	}

	// a .env file is optional, plain environment variables still apply
	_ = godotenv.Load()

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		config.Server.Port = port
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		config.Database.URL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		config.JWT.Secret = v
	}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		config.Server.CORSOrigin = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		config.Metrics.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.Server.LogLevel = v
	}

	if config.Database.URL == "" {
		return nil, fmt.Errorf("database url is required (set DATABASE_URL or [database] url)")
	}
	if config.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required (set JWT_SECRET or [jwt] secret)")
	}

	return config, nil
}

// Package config loads ptvlineage settings from an optional YAML file and
// PTV_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrInvalid is returned by Validate for unusable settings.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all settings of a maintenance run.
type Config struct {
	Database DatabaseConfig
	Log      LogConfig
	Resolver ResolverConfig
	Detector DetectorConfig
}

// DatabaseConfig selects and configures the registry database.
type DatabaseConfig struct {
	Driver string

	// Path of the SQLite snapshot database.
	Path string

	// URL overrides the individual Postgres settings when set.
	URL         string
	Host        string
	Port        int
	Name        string
	User        string
	Password    string
	SSLMode     string
	MaxConns    int
	MinConns    int
	MaxIdleTime time.Duration
	MaxLifetime time.Duration
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string
	Format string
}

// ResolverConfig holds lineage resolution settings.
type ResolverConfig struct {
	DryRun bool
}

// DetectorConfig holds hierarchy check settings.
type DetectorConfig struct {
	Exhaustive bool
}

// Load reads configuration. An empty path skips the file; environment
// variables take precedence over the file, e.g. PTV_DATABASE_DRIVER maps to
// database.driver.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PTV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Driver:      v.GetString("database.driver"),
			Path:        v.GetString("database.path"),
			URL:         v.GetString("database.url"),
			Host:        v.GetString("database.host"),
			Port:        v.GetInt("database.port"),
			Name:        v.GetString("database.name"),
			User:        v.GetString("database.user"),
			Password:    v.GetString("database.password"),
			SSLMode:     v.GetString("database.sslmode"),
			MaxConns:    v.GetInt("database.max_conns"),
			MinConns:    v.GetInt("database.min_conns"),
			MaxIdleTime: v.GetDuration("database.max_idle_time"),
			MaxLifetime: v.GetDuration("database.max_lifetime"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Resolver: ResolverConfig{
			DryRun: v.GetBool("resolver.dry_run"),
		},
		Detector: DetectorConfig{
			Exhaustive: v.GetBool("detector.exhaustive"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "ptv.db")
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "ptv")
	v.SetDefault("database.user", "ptv")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_idle_time", 30*time.Minute)
	v.SetDefault("database.max_lifetime", time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("resolver.dry_run", false)
	v.SetDefault("detector.exhaustive", false)
}

// Validate checks if configuration is valid.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("%w: database path is required for sqlite", ErrInvalid)
		}
	case DriverPostgres:
		if c.Database.URL == "" && c.Database.Host == "" {
			return fmt.Errorf("%w: database host is required for postgres", ErrInvalid)
		}
		if c.Database.URL == "" && (c.Database.Port < 1 || c.Database.Port > 65535) {
			return fmt.Errorf("%w: invalid database port: %d", ErrInvalid, c.Database.Port)
		}
		if c.Database.MaxConns < 1 {
			return fmt.Errorf("%w: max_conns must be positive", ErrInvalid)
		}
		if c.Database.MaxConns < c.Database.MinConns {
			return fmt.Errorf("%w: max_conns must be >= min_conns", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown database driver %q (want %s or %s)",
			ErrInvalid, c.Database.Driver, DriverSQLite, DriverPostgres)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalid, c.Log.Format)
	}

	return nil
}

// DatabaseURL returns the PostgreSQL connection string.
func (c *Config) DatabaseURL() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.Database.SSLMode),
	}
	return u.String()
}

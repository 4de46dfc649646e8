// Package config assembles the server configuration from defaults, an
// optional YAML file, a .env file, the environment and command-line flags,
// in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig takes either a full DSN or the POSTGRES_* style parts.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	LoginLimit  int           `yaml:"login_limit"`
	LoginWindow time.Duration `yaml:"login_window"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const minSecretLength = 32

func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080", ShutdownTimeout: 5 * time.Second},
		Database: DatabaseConfig{
			Driver:  "postgres",
			SSLMode: "disable",
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
			// max 5 login attempts per 15 minutes from the same IP
			LoginLimit:  5,
			LoginWindow: 15 * time.Minute,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration for args (without the program name).
// It returns pflag.ErrHelp when --help was requested.
func Load(args []string) (Config, error) {
	cfg := Default()

	fs := pflag.NewFlagSet("tracker", pflag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML config file (env TRACKER_CONFIG)")
	envFile := fs.String("env-file", ".env", "dotenv file to load if present")
	addr := fs.String("addr", "", "listen address, e.g. :8080")
	driver := fs.String("db-driver", "", "database driver: postgres or sqlite3")
	dsn := fs.String("db-dsn", "", "database connection string")
	logLevel := fs.String("log-level", "", "debug, info, warn or error")
	logFormat := fs.String("log-format", "", "text or json")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if err := loadDotenv(*envFile); err != nil {
		return cfg, err
	}

	path := *configPath
	if path == "" {
		path = os.Getenv("TRACKER_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}

	if fs.Changed("addr") {
		cfg.Server.Addr = *addr
	}
	if fs.Changed("db-driver") {
		cfg.Database.Driver = *driver
	}
	if fs.Changed("db-dsn") {
		cfg.Database.DSN = *dsn
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = *logLevel
	}
	if fs.Changed("log-format") {
		cfg.Log.Format = *logFormat
	}
	return cfg, cfg.Validate()
}

// loadDotenv never overrides variables that are already set. A missing
// file is fine.
func loadDotenv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	setString(&c.Server.Addr, "TRACKER_ADDR")
	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.DSN, "DATABASE_URL")
	setString(&c.Database.Host, "POSTGRES_HOST")
	setString(&c.Database.Port, "POSTGRES_PORT")
	setString(&c.Database.User, "POSTGRES_USER")
	setString(&c.Database.Password, "POSTGRES_PASSWORD")
	setString(&c.Database.Name, "POSTGRES_DB")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	if v := os.Getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TOKEN_TTL: %w", err)
		}
		c.Auth.TokenTTL = d
	}
	if v := os.Getenv("LOGIN_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LOGIN_LIMIT: %w", err)
		}
		c.Auth.LoginLimit = n
	}
	return nil
}

// DataSource returns the DSN, building a postgres one from its parts when no
// DSN is set.
func (c DatabaseConfig) DataSource() string {
	if c.DSN != "" || c.Driver != "postgres" || c.Host == "" {
		return c.DSN
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server address must be set"))
	}
	switch c.Database.Driver {
	case "postgres", "sqlite3":
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver %q", c.Database.Driver))
	}
	if c.Database.DataSource() == "" {
		errs = append(errs, errors.New("database DSN or POSTGRES_HOST must be set"))
	}
	if len(c.Auth.JWTSecret) < minSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters", minSecretLength))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("token TTL must be positive"))
	}
	if c.Auth.LoginLimit <= 0 || c.Auth.LoginWindow <= 0 {
		errs = append(errs, errors.New("login limit and window must be positive"))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("unsupported log format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return level, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// NewLogger builds the process logger writing to w.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

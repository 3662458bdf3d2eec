// Package config loads settings with the precedence
// YAML file -> defaults -> .env file -> environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ecoquest/ecoquest-engine/internal/adapters/storage"
)

type Config struct {
	// Namespace scopes storage keys to one installation. Empty means "generate
	// and persist one".
	Namespace string `yaml:"namespace"`
	Timezone  string `yaml:"timezone"`

	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Auth      AuthConfig      `yaml:"auth"`
	Reward    RewardConfig    `yaml:"reward"`
	Log       LogConfig       `yaml:"log"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Rollover  RolloverConfig  `yaml:"rollover"`
}

type ServerConfig struct {
	Port           string   `yaml:"port"`
	GinMode        string   `yaml:"gin_mode"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// TrustedProxies lists the IPs or CIDRs allowed to set X-Forwarded-For.
	// Empty means the socket address is the client IP.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

type StorageConfig struct {
	Engine     string         `yaml:"engine"`
	SQLitePath string         `yaml:"sqlite_path"`
	Redis      RedisConfig    `yaml:"redis"`
	Postgres   PostgresConfig `yaml:"postgres"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type PostgresConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	Issuer    string        `yaml:"issuer"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type RewardConfig struct {
	BaseURL       string        `yaml:"base_url"`
	Timeout       time.Duration `yaml:"timeout"`
	RatePerSecond float64       `yaml:"rate_per_second"`
	Burst         int           `yaml:"burst"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

type RolloverConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// Load reads path (optional; a missing file is not an error), then .env from
// the working directory, then the environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	applyDefaults(cfg)

	// .env never overrides variables already present in the environment.
	_ = godotenv.Load()

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultSQLitePath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "ecoquest", "state.db")
	}
	return filepath.Join(".ecoquest", "state.db")
}

func applyDefaults(cfg *Config) {
	setDefault(&cfg.Server.Port, "8080")
	setDefault(&cfg.Server.GinMode, "release")
	setDefault(&cfg.Storage.Engine, storage.EngineSQLite)
	setDefault(&cfg.Storage.SQLitePath, defaultSQLitePath())
	setDefault(&cfg.Storage.Redis.Host, "localhost")
	setDefault(&cfg.Storage.Redis.Port, "6379")
	setDefault(&cfg.Storage.Postgres.Driver, "pgx")
	setDefault(&cfg.Storage.Postgres.Host, "localhost")
	setDefault(&cfg.Storage.Postgres.Port, "5432")
	setDefault(&cfg.Storage.Postgres.SSLMode, "disable")
	setDefault(&cfg.Auth.Issuer, "ecoquest")
	setDefault(&cfg.Log.Level, "info")

	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	if cfg.Reward.Timeout == 0 {
		cfg.Reward.Timeout = 10 * time.Second
	}
	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 100
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = time.Minute
	}
	if cfg.Rollover.Interval == 0 {
		cfg.Rollover.Interval = time.Minute
	}
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func applyEnvOverrides(cfg *Config) error {
	strs := map[string]*string{
		"ECOQUEST_NAMESPACE":  &cfg.Namespace,
		"TZ_NAME":             &cfg.Timezone,
		"PORT":                &cfg.Server.Port,
		"GIN_MODE":            &cfg.Server.GinMode,
		"STORAGE_ENGINE":      &cfg.Storage.Engine,
		"SQLITE_PATH":         &cfg.Storage.SQLitePath,
		"REDIS_HOST":          &cfg.Storage.Redis.Host,
		"REDIS_PORT":          &cfg.Storage.Redis.Port,
		"REDIS_PASSWORD":      &cfg.Storage.Redis.Password,
		"DB_DRIVER":           &cfg.Storage.Postgres.Driver,
		"DB_HOST":             &cfg.Storage.Postgres.Host,
		"DB_PORT":             &cfg.Storage.Postgres.Port,
		"DB_USER":             &cfg.Storage.Postgres.User,
		"DB_PASSWORD":         &cfg.Storage.Postgres.Password,
		"DB_NAME":             &cfg.Storage.Postgres.Name,
		"DB_SSLMODE":          &cfg.Storage.Postgres.SSLMode,
		"JWT_SECRET":          &cfg.Auth.JWTSecret,
		"JWT_ISSUER":          &cfg.Auth.Issuer,
		"REWARD_API_BASE_URL": &cfg.Reward.BaseURL,
		"LOG_LEVEL":           &cfg.Log.Level,
		"LOG_PATH":            &cfg.Log.Path,
	}
	for key, field := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*field = strings.TrimSpace(v)
		}
	}

	if v, ok := os.LookupEnv("REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: REDIS_DB: %w", err)
		}
		cfg.Storage.Redis.DB = n
	}

	lists := map[string]*[]string{
		"ALLOWED_ORIGINS": &cfg.Server.AllowedOrigins,
		"TRUSTED_PROXIES": &cfg.Server.TrustedProxies,
	}
	for key, field := range lists {
		if v, ok := os.LookupEnv(key); ok {
			*field = splitList(v)
		}
	}

	durations := map[string]*time.Duration{
		"JWT_TOKEN_TTL":     &cfg.Auth.TokenTTL,
		"REWARD_TIMEOUT":    &cfg.Reward.Timeout,
		"RATE_LIMIT_WINDOW": &cfg.RateLimit.Window,
		"ROLLOVER_INTERVAL": &cfg.Rollover.Interval,
	}
	for key, field := range durations {
		if v, ok := os.LookupEnv(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("config: %s: %w", key, err)
			}
			*field = d
		}
	}

	return nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Storage.Engine) {
	case storage.EngineMemory, storage.EngineSQLite, storage.EngineRedis, storage.EnginePostgres:
	default:
		return fmt.Errorf("config: unsupported storage engine %q", c.Storage.Engine)
	}

	switch c.Storage.Postgres.Driver {
	case "pgx", "postgres":
	default:
		return fmt.Errorf("config: unsupported postgres driver %q (pgx or postgres)", c.Storage.Postgres.Driver)
	}

	switch c.Server.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: unsupported gin mode %q", c.Server.GinMode)
	}

	if c.Timezone != "" && c.Timezone != "Local" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("config: invalid timezone %q: %w", c.Timezone, err)
		}
	}

	for _, proxy := range c.Server.TrustedProxies {
		if net.ParseIP(proxy) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(proxy); err != nil {
			return fmt.Errorf("config: invalid trusted proxy %q", proxy)
		}
	}

	if c.RateLimit.Requests < 0 {
		return errors.New("config: rate_limit.requests cannot be negative")
	}
	return nil
}

// RequireServing checks the settings only the HTTP server and reward flow need.
func (c *Config) RequireServing() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("config: JWT_SECRET must be set")
	}
	return c.RequireReward()
}

func (c *Config) RequireReward() error {
	if c.Reward.BaseURL == "" {
		return errors.New("config: REWARD_API_BASE_URL must be set")
	}
	return nil
}

func (c *Config) StorageOptions() storage.Options {
	pg := c.Storage.Postgres
	return storage.Options{
		Engine:         c.Storage.Engine,
		SQLitePath:     c.Storage.SQLitePath,
		RedisHost:      c.Storage.Redis.Host,
		RedisPort:      c.Storage.Redis.Port,
		RedisPassword:  c.Storage.Redis.Password,
		RedisDB:        c.Storage.Redis.DB,
		PostgresDriver: pg.Driver,
		PostgresDSN: fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			pg.User, pg.Password, pg.Host, pg.Port, pg.Name, pg.SSLMode),
	}
}

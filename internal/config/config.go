package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Duration lets TOML files spell intervals as "90s" or "24h"
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

type Config struct {
	Port          int    `toml:"port"`
	StorageDriver string `toml:"storage_driver"`
	DatabaseURL   string `toml:"database_url"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	LogLevel      string `toml:"log_level"`

	SweepInterval    Duration `toml:"sweep_interval"`
	EndingSoonWindow Duration `toml:"ending_soon_window"`
	SweepWorkers     int      `toml:"sweep_workers"`
	EnforceReserve   bool     `toml:"enforce_reserve"`

	AdminUserIDs   []string `toml:"admin_user_ids"`
	SeedSampleData bool     `toml:"seed_sample_data"`
}

func Default() Config {
	return Config{
		Port:             8080,
		StorageDriver:    StorageMemory,
		LogLevel:         "info",
		SweepInterval:    Duration{time.Minute},
		EndingSoonWindow: Duration{24 * time.Hour},
		SweepWorkers:     4,
		SeedSampleData:   true,
	}
}

// Load builds the configuration from defaults, then the TOML file at path (if
// any), then a local .env file, then the process environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to open config: %w", err)
		}
		if err := toml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	var errs []error

	setString("STORAGE_DRIVER", &cfg.StorageDriver)
	setString("DATABASE_URL", &cfg.DatabaseURL)
	setString("REDIS_ADDR", &cfg.RedisAddr)
	setString("REDIS_PASSWORD", &cfg.RedisPassword)
	setString("LOG_LEVEL", &cfg.LogLevel)

	errs = append(errs,
		setInt("PORT", &cfg.Port),
		setInt("SWEEP_WORKERS", &cfg.SweepWorkers),
		setDuration("SWEEP_INTERVAL", &cfg.SweepInterval),
		setDuration("ENDING_SOON_WINDOW", &cfg.EndingSoonWindow),
		setBool("ENFORCE_RESERVE", &cfg.EnforceReserve),
		setBool("SEED_SAMPLE_DATA", &cfg.SeedSampleData),
	)

	if v, ok := os.LookupEnv("ADMIN_USER_IDS"); ok {
		cfg.AdminUserIDs = nil
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cfg.AdminUserIDs = append(cfg.AdminUserIDs, id)
			}
		}
	}
	return errors.Join(errs...)
}

// Validate rejects settings the server cannot start with
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required for the postgres storage driver")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.StorageDriver)
	}
	if c.SweepInterval.Duration <= 0 {
		return errors.New("config: SWEEP_INTERVAL must be a positive duration")
	}
	if c.EndingSoonWindow.Duration < 0 {
		return errors.New("config: ENDING_SOON_WINDOW cannot be negative")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}
	return nil
}

func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func setString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(key string, dst *bool) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = b
	return nil
}

func setDuration(key string, dst *Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	if err := dst.UnmarshalText([]byte(v)); err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	return nil
}

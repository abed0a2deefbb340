package config

import (
	"delivery-allocation-service/internal/platform/db"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the process configuration resolved from the environment.
type Config struct {
	Port          string
	DBDriver      string
	DBPath        string
	DatabaseURL   string
	SeedPath      string
	RedisURL      string
	LogLevel      string
	LimitsFile    string
	RunRatePerMin int
}

// Load reads an optional .env file and resolves Config from the environment.
// The returned bool reports whether a .env file was found. Malformed numeric
// values are an error rather than a silent fallback.
func Load() (Config, bool, error) {
	found := godotenv.Load() == nil

	runRate, err := GetInt("RUN_RATE_PER_MIN", 6)
	if err != nil {
		return Config{}, found, fmt.Errorf("load config: %w", err)
	}

	return Config{
		Port:          Get("PORT", "8080"),
		DBDriver:      strings.ToLower(Get("DB_DRIVER", "sqlite")),
		DBPath:        Get("DB_PATH", "data/app.db"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SeedPath:      Get("SEED_PATH", "data/seeds/fleet.json"),
		RedisURL:      os.Getenv("REDIS_URL"),
		LogLevel:      Get("LOG_LEVEL", "info"),
		LimitsFile:    os.Getenv("LIMITS_FILE"),
		RunRatePerMin: runRate,
	}, found, nil
}

// DSN returns the data source name for the configured driver.
func (c Config) DSN() string {
	if db.NormalizeDriver(c.DBDriver) == db.DriverPostgres {
		return c.DatabaseURL
	}
	return c.DBPath
}

func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// GetInt returns the integer value of key, or fallback when unset.
func GetInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

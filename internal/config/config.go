// Package config provides environment-based configuration loading
// for the feed service and its companion tools.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Base holds configuration common to every binary.
type Base struct {
	Port     int
	LogLevel string
}

// Feed holds configuration for the feed service.
type Feed struct {
	Base

	// WriteKey is the shared secret compared against api_key on every
	// write and read. The default is a development placeholder.
	WriteKey string

	DatabaseURL string

	// QueryTimeout bounds every storage call.
	QueryTimeout time.Duration

	// StorageAttempts is the number of tries per storage call.
	// 1 means no retry; anything higher enables bounded retry with
	// exponential backoff for transient errors.
	StorageAttempts int

	// MigrationsDir, when set, makes the service run golang-migrate at
	// startup instead of provisioning the schema lazily on first request.
	MigrationsDir string
}

// SensorSim holds configuration for the sample generator tool.
type SensorSim struct {
	FeedURL    string
	WriteKey   string
	IntervalMS int

	// Count limits how many samples to send; 0 means run until stopped.
	Count int
}

// LoadBase reads the common configuration from environment variables.
func LoadBase(defaultPort int) Base {
	return Base{
		Port:     GetEnvInt("PORT", defaultPort),
		LogLevel: GetEnv("LOG_LEVEL", "info"),
	}
}

// LoadFeed returns the feed service configuration.
func LoadFeed() Feed {
	return Feed{
		Base:            LoadBase(8080),
		WriteKey:        GetEnv("WRITE_KEY", "YOUR_WRITE_KEY"),
		DatabaseURL:     databaseURL(),
		QueryTimeout:    GetEnvDuration("QUERY_TIMEOUT", 10*time.Second),
		StorageAttempts: GetEnvInt("STORAGE_ATTEMPTS", 1),
		MigrationsDir:   GetEnv("MIGRATIONS_DIR", ""),
	}
}

// LoadSensorSim returns the sample generator configuration.
func LoadSensorSim() SensorSim {
	return SensorSim{
		FeedURL:    GetEnv("FEED_URL", "http://localhost:8080"),
		WriteKey:   GetEnv("WRITE_KEY", "YOUR_WRITE_KEY"),
		IntervalMS: GetEnvInt("SIM_INTERVAL_MS", 1000),
		Count:      GetEnvInt("SIM_COUNT", 0),
	}
}

// databaseURL assembles the Postgres DSN. DATABASE_URL wins when set;
// otherwise the DSN is built from the individual DB_* variables, whose
// defaults are suitable for local development only.
func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}

	host := GetEnv("DB_HOST", "127.0.0.1")
	port := GetEnvInt("DB_PORT", 5432)
	user := GetEnv("DB_USER", "postgres")
	pass := GetEnv("DB_PASS", "")
	name := GetEnv("DB_NAME", "telemetry")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, pass),
		Host:     fmt.Sprintf("%s:%d", host, port),
		Path:     name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// SlogLevel parses the configured log level string into an slog.Level.
func (b Base) SlogLevel() slog.Level {
	switch b.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Addr returns the listen address as ":PORT".
func (b Base) Addr() string {
	return fmt.Sprintf(":%d", b.Port)
}

// ---------------------------------------------------------------------------
// Env helpers
// ---------------------------------------------------------------------------

// GetEnv returns the value of the environment variable or fallback.
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetEnvInt returns the integer value of the environment variable or fallback.
func GetEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// GetEnvDuration returns the duration value of the environment variable or
// fallback. The env value is parsed via time.ParseDuration (e.g. "10s", "1m").
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	Driver          string
	DSN             string
	Path            string
	ReadOnly        bool
	LogQueries      bool
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
	ConnectTimeout  time.Duration

	// BreakerFailureThreshold is the number of consecutive store failures that
	// opens the circuit. Zero disables the breaker.
	BreakerFailureThreshold int
	BreakerOpenTimeout      time.Duration

	// RateLimitRPM caps requests per minute per client IP. Zero disables it.
	RateLimitRPM int
}

// LoadDotEnv populates the environment from a .env file. Variables that are
// already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	readOnly, err := envBool("DB_READ_ONLY", true)
	if err != nil {
		return Config{}, err
	}
	logQueries, err := envBool("DB_LOG_QUERIES", false)
	if err != nil {
		return Config{}, err
	}

	maxOpenConns, err := envInt("DB_MAX_OPEN_CONNS", 4)
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := envInt("DB_MAX_IDLE_CONNS", 4)
	if err != nil {
		return Config{}, err
	}
	connMaxLifetime, err := envDuration("DB_CONN_MAX_LIFETIME", 0)
	if err != nil {
		return Config{}, err
	}
	queryTimeout, err := envDuration("DB_QUERY_TIMEOUT", 5*time.Second)
	if err != nil {
		return Config{}, err
	}
	connectTimeout, err := envDuration("DB_CONNECT_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}

	breakerThreshold, err := envInt("BREAKER_FAILURE_THRESHOLD", 5)
	if err != nil {
		return Config{}, err
	}
	if breakerThreshold < 0 {
		return Config{}, fmt.Errorf("invalid BREAKER_FAILURE_THRESHOLD %d (must be >= 0)", breakerThreshold)
	}
	breakerOpenTimeout, err := envDuration("BREAKER_OPEN_TIMEOUT", 30*time.Second)
	if err != nil {
		return Config{}, err
	}

	rateLimit, err := envInt("RATE_LIMIT_RPM", 0)
	if err != nil {
		return Config{}, err
	}
	if rateLimit < 0 {
		return Config{}, fmt.Errorf("invalid RATE_LIMIT_RPM %d (must be >= 0)", rateLimit)
	}

	return Config{
		AppEnv:                  appEnv,
		LogLevel:                level,
		HTTPAddr:                envOr("HTTP_ADDR", ":8080"),
		Driver:                  envOr("DB_DRIVER", "sqlite3"),
		DSN:                     strings.TrimSpace(os.Getenv("DB_DSN")),
		Path:                    envOr("SQLITE_PATH", "data/hawaii.sqlite"),
		ReadOnly:                readOnly,
		LogQueries:              logQueries,
		MaxOpenConns:            maxOpenConns,
		MaxIdleConns:            maxIdleConns,
		ConnMaxLifetime:         connMaxLifetime,
		QueryTimeout:            queryTimeout,
		ConnectTimeout:          connectTimeout,
		BreakerFailureThreshold: breakerThreshold,
		BreakerOpenTimeout:      breakerOpenTimeout,
		RateLimitRPM:            rateLimit,
	}, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func envBool(key string, def bool) (bool, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return b, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"agromarket-backend/internal/infrastructure/database"
)

// Fixed pool lifetimes
const (
	dbMaxConnLifetime   = 30 * time.Minute
	dbMaxConnIdleTime   = 5 * time.Minute
	dbHealthCheckPeriod = time.Minute

	// connections kept free for API imports on top of the worker's goroutines
	dbImportHeadroom = 5
)

// DatabaseConfig builds the pgx pool settings. The pool defaults to one connection
// per worker goroutine plus headroom for concurrent imports, and a single statement
// may never outlive the import timeout.
func (c *Config) DatabaseConfig() (*database.DBConfig, error) {
	p := envParser{}

	minPool := c.Worker.Concurrency + dbImportHeadroom
	cfg := &database.DBConfig{
		Host:              getEnv("DB_HOST", "localhost"),
		Port:              p.getInt("DB_PORT", 5432),
		Username:          getEnv("DB_USER", "agromarket"),
		Password:          getEnv("DB_PASSWORD", "secret"),
		DBName:            getEnv("DB_NAME", "agromarket_dev"),
		ApplicationName:   getEnv("DB_APPLICATION_NAME", c.App.Name),
		MaxConns:          int32(p.getInt("DB_MAX_CONNECTIONS", max(25, minPool))),
		MinConns:          int32(p.getInt("DB_MIN_CONNECTIONS", 2)),
		MaxConnLifetime:   dbMaxConnLifetime,
		MaxConnIdleTime:   dbMaxConnIdleTime,
		HealthCheckPeriod: dbHealthCheckPeriod,
		StatementTimeout:  p.getDuration("DB_STATEMENT_TIMEOUT", 30*time.Second),
		MaxRetries:        p.getInt("DB_MAX_RETRIES", 5),
		RetryDelay:        p.getDuration("DB_RETRY_DELAY", time.Second),
		ConnectTimeout:    p.getDuration("DB_CONNECT_TIMEOUT", 10*time.Second),
	}
	if p.err != nil {
		return nil, p.err
	}

	if c.App.Environment == "production" && os.Getenv("DB_PASSWORD") == "" {
		return nil, errors.New("DB_PASSWORD must be set in production")
	}
	if int(cfg.MaxConns) < minPool {
		return nil, fmt.Errorf("DB_MAX_CONNECTIONS must be at least %d (WORKER_CONCURRENCY + %d)", minPool, dbImportHeadroom)
	}
	if cfg.MinConns > cfg.MaxConns {
		cfg.MinConns = cfg.MaxConns
	}
	if cfg.StatementTimeout > c.Import.Timeout {
		cfg.StatementTimeout = c.Import.Timeout
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}

	return cfg, nil
}

// envParser reads typed values strictly, keeping every malformed key
type envParser struct {
	err error
}

func (p *envParser) getInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.err = errors.Join(p.err, fmt.Errorf("invalid %s: %w", key, err))
		return defaultValue
	}
	return v
}

func (p *envParser) getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.err = errors.Join(p.err, fmt.Errorf("invalid %s: %w", key, err))
		return defaultValue
	}
	return v
}

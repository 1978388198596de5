package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"agromarket-backend/internal/shared/utils"
)

// Config holds the whole application configuration, populated from environment variables
type Config struct {
	App    AppConfig
	Redis  RedisConfig
	JWT    JWTConfig
	MinIO  MinIOConfig
	Import ImportConfig
	Worker WorkerConfig
}

type AppConfig struct {
	Name           string
	Environment    string // development, staging, production
	Port           string
	Version        string
	LogLevel       string
	AllowedOrigins []string
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry int // minutes
}

type MinIOConfig struct {
	Endpoint  string // localhost:9000
	AccessKey string
	SecretKey string
	Bucket    string // agromarket
	UseSSL    bool
}

// ImportConfig bounds bulk product imports
type ImportConfig struct {
	BatchSize     int
	MaxRows       int
	MaxFileSize   int64 // bytes
	Timeout       time.Duration
	ArchiveSource bool

	MirrorImages    bool
	MirrorRate      float64 // downloads per second
	MirrorBurst     int
	ImageMaxSize    int64 // bytes
	DownloadTimeout time.Duration
}

// WorkerConfig drives the asynq worker and scheduler
type WorkerConfig struct {
	Concurrency     int
	HealthPort      string
	MirrorSweepCron string
	MirrorSweepSize int
}

// Load reads config from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:           getEnv("APP_NAME", "AgroMarket API"),
			Environment:    getEnv("APP_ENV", "development"),
			Port:           getEnv("APP_PORT", "8080"),
			Version:        getEnv("APP_VERSION", "1.0.0"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenExpiry: getEnvInt("JWT_ACCESS_EXPIRY", 15),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "agromarket"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Import: ImportConfig{
			BatchSize:       getEnvInt("IMPORT_BATCH_SIZE", 50),
			MaxRows:         getEnvInt("IMPORT_MAX_ROWS", 1000),
			MaxFileSize:     int64(getEnvInt("IMPORT_MAX_FILE_MB", 10)) * 1024 * 1024,
			Timeout:         getEnvDuration("IMPORT_TIMEOUT", 5*time.Minute),
			ArchiveSource:   getEnvBool("IMPORT_ARCHIVE_SOURCE", true),
			MirrorImages:    getEnvBool("IMPORT_MIRROR_IMAGES", true),
			MirrorRate:      getEnvFloat("IMPORT_MIRROR_RATE", 2),
			MirrorBurst:     getEnvInt("IMPORT_MIRROR_BURST", 4),
			ImageMaxSize:    int64(getEnvInt("IMPORT_IMAGE_MAX_MB", 5)) * 1024 * 1024,
			DownloadTimeout: getEnvDuration("IMPORT_DOWNLOAD_TIMEOUT", 30*time.Second),
		},
		Worker: WorkerConfig{
			Concurrency:     getEnvInt("WORKER_CONCURRENCY", 10),
			HealthPort:      getEnv("WORKER_HEALTH_PORT", "8081"),
			MirrorSweepCron: getEnv("MIRROR_SWEEP_CRON", "*/30 * * * *"),
			MirrorSweepSize: getEnvInt("MIRROR_SWEEP_SIZE", 100),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the values that would otherwise fail at runtime
func (c *Config) Validate() error {
	if c.App.Environment == "production" && c.JWT.Secret == "your-secret-key-change-in-production" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.Import.BatchSize <= 0 {
		return fmt.Errorf("IMPORT_BATCH_SIZE must be positive")
	}
	if c.Import.MaxRows <= 0 {
		return fmt.Errorf("IMPORT_MAX_ROWS must be positive")
	}
	if c.Import.MaxFileSize <= 0 {
		return fmt.Errorf("IMPORT_MAX_FILE_MB must be positive")
	}
	if c.Import.MirrorImages && c.Import.MirrorRate <= 0 {
		return fmt.Errorf("IMPORT_MIRROR_RATE must be positive when mirroring is enabled")
	}
	if c.Worker.Concurrency <= 0 {
		return fmt.Errorf("WORKER_CONCURRENCY must be positive")
	}

	if c.App.Environment == "production" && !c.MinIO.UseSSL {
		log.Warn().Msg("MINIO_USE_SSL is false in production")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvList splits a comma separated value, dropping blanks
func getEnvList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	out := utils.SplitList(valueStr)
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

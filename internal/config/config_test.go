package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Import.BatchSize)
	assert.Equal(t, 1000, cfg.Import.MaxRows)
	assert.Equal(t, int64(10*1024*1024), cfg.Import.MaxFileSize)
	assert.Equal(t, 5*time.Minute, cfg.Import.Timeout)
	assert.Equal(t, "*/30 * * * *", cfg.Worker.MirrorSweepCron)
	assert.Equal(t, "agromarket", cfg.MinIO.Bucket)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("IMPORT_BATCH_SIZE", "10")
	t.Setenv("IMPORT_TIMEOUT", "90s")
	t.Setenv("IMPORT_MIRROR_IMAGES", "false")
	t.Setenv("IMPORT_MIRROR_RATE", "0.5")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://pazar.example.com, ,http://localhost:5173")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Import.BatchSize)
	assert.Equal(t, 90*time.Second, cfg.Import.Timeout)
	assert.False(t, cfg.Import.MirrorImages)
	assert.Equal(t, 0.5, cfg.Import.MirrorRate)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, 0, cfg.Redis.DB, "invalid numbers fall back to the default")
	assert.Equal(t, []string{"https://pazar.example.com", "http://localhost:5173"}, cfg.App.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	t.Run("production requires a JWT secret", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		_, err := Load()
		assert.ErrorContains(t, err, "JWT_SECRET")
	})

	t.Run("batch size must be positive", func(t *testing.T) {
		t.Setenv("IMPORT_BATCH_SIZE", "0")
		_, err := Load()
		assert.ErrorContains(t, err, "IMPORT_BATCH_SIZE")
	})
}

func TestDatabaseConfig(t *testing.T) {
	t.Run("defaults are sized for the worker", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		db, err := cfg.DatabaseConfig()
		require.NoError(t, err)
		assert.Equal(t, int32(25), db.MaxConns)
		assert.Equal(t, int32(2), db.MinConns)
		assert.Equal(t, 30*time.Second, db.StatementTimeout)
		assert.Equal(t, cfg.App.Name, db.ApplicationName)
	})

	t.Run("large worker raises the default pool", func(t *testing.T) {
		t.Setenv("WORKER_CONCURRENCY", "40")
		cfg, err := Load()
		require.NoError(t, err)

		db, err := cfg.DatabaseConfig()
		require.NoError(t, err)
		assert.Equal(t, int32(45), db.MaxConns)
	})

	t.Run("pool smaller than the worker is rejected", func(t *testing.T) {
		t.Setenv("DB_MAX_CONNECTIONS", "8")
		cfg, err := Load()
		require.NoError(t, err)

		_, err = cfg.DatabaseConfig()
		assert.ErrorContains(t, err, "DB_MAX_CONNECTIONS")
	})

	t.Run("statement timeout is capped by the import timeout", func(t *testing.T) {
		t.Setenv("IMPORT_TIMEOUT", "20s")
		t.Setenv("DB_STATEMENT_TIMEOUT", "1m")
		t.Setenv("DB_MIN_CONNECTIONS", "100")
		cfg, err := Load()
		require.NoError(t, err)

		db, err := cfg.DatabaseConfig()
		require.NoError(t, err)
		assert.Equal(t, 20*time.Second, db.StatementTimeout)
		assert.Equal(t, db.MaxConns, db.MinConns)
	})

	t.Run("malformed values are all reported", func(t *testing.T) {
		t.Setenv("DB_PORT", "five")
		t.Setenv("DB_RETRY_DELAY", "soon")
		cfg, err := Load()
		require.NoError(t, err)

		_, err = cfg.DatabaseConfig()
		require.Error(t, err)
		assert.ErrorContains(t, err, "DB_PORT")
		assert.ErrorContains(t, err, "DB_RETRY_DELAY")
	})
}

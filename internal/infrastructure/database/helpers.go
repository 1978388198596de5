package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"agromarket-backend/internal/infrastructure/metrics"
)

// PoolStats is a snapshot of pgxpool statistics
type PoolStats struct {
	AcquireCount         int64
	AcquireDuration      time.Duration
	AcquiredConns        int32
	CanceledAcquireCount int64
	IdleConns            int32
	MaxConns             int32
	TotalConns           int32
}

func (db *PostgresDB) Stats() (*PoolStats, error) {
	if db.Pool == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}

	raw := db.Pool.Stat()
	return &PoolStats{
		AcquireCount:         raw.AcquireCount(),
		AcquireDuration:      raw.AcquireDuration(),
		AcquiredConns:        raw.AcquiredConns(),
		CanceledAcquireCount: raw.CanceledAcquireCount(),
		IdleConns:            raw.IdleConns(),
		MaxConns:             raw.MaxConns(),
		TotalConns:           raw.TotalConns(),
	}, nil
}

func calculateAvgDuration(totalDuration time.Duration, count int64) time.Duration {
	if count == 0 {
		return 0
	}
	return totalDuration / time.Duration(count)
}

// poolWarnings lists the conditions worth a log line
func poolWarnings(s *PoolStats) []string {
	var warnings []string

	if s.MaxConns > 0 {
		utilization := float64(s.AcquiredConns) / float64(s.MaxConns) * 100
		if utilization > 80 {
			warnings = append(warnings, fmt.Sprintf("high pool utilization: %.1f%% (%d/%d)", utilization, s.AcquiredConns, s.MaxConns))
		}
	}

	if avg := calculateAvgDuration(s.AcquireDuration, s.AcquireCount); avg > 100*time.Millisecond {
		warnings = append(warnings, fmt.Sprintf("high acquire latency: %v", avg))
	}

	if s.AcquireCount > 0 && s.CanceledAcquireCount > 0 {
		cancelRate := float64(s.CanceledAcquireCount) / float64(s.AcquireCount) * 100
		if cancelRate > 5 {
			warnings = append(warnings, fmt.Sprintf("high cancel rate: %.1f%%", cancelRate))
		}
	}

	return warnings
}

// MonitorPoolHealth publishes pool gauges and logs warnings every interval until ctx ends
func (db *PostgresDB) MonitorPoolHealth(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats, err := db.Stats()
			if err != nil {
				log.Warn().Err(err).Msg("Failed to read pool stats")
				continue
			}

			metrics.RecordPool(stats.AcquiredConns, stats.IdleConns, stats.TotalConns)

			for _, w := range poolWarnings(stats) {
				log.Warn().Str("component", "db_pool").Msg(w)
			}

		case <-ctx.Done():
			return
		}
	}
}

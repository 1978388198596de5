package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"agromarket-backend/internal/config"
	"agromarket-backend/internal/shared"
	"agromarket-backend/pkg/logger"
)

type Scheduler struct {
	scheduler    *asynq.Scheduler
	workerConfig config.WorkerConfig
}

func NewScheduler(redisOpt asynq.RedisClientOpt, workerConfig config.WorkerConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler:    scheduler,
		workerConfig: workerConfig,
	}
}

func (s *Scheduler) RegisterJobs() error {
	return s.registerMirrorSweepJob()
}

// ================================================
// Mirror sweep (default every 30 minutes)
// ================================================
func (s *Scheduler) registerMirrorSweepJob() error {
	task, err := NewMirrorSweepTask(s.workerConfig.MirrorSweepSize)
	if err != nil {
		return err
	}

	_, err = s.scheduler.Register(
		s.workerConfig.MirrorSweepCron,
		task,
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register MirrorSweep job", err)
		return err
	}

	logger.Info("Registered MirrorSweep", map[string]interface{}{
		"cron":  s.workerConfig.MirrorSweepCron,
		"limit": s.workerConfig.MirrorSweepSize,
	})
	return nil
}

// NewMirrorSweepTask builds the periodic sweep task
func NewMirrorSweepTask(limit int) (*asynq.Task, error) {
	payload, err := json.Marshal(shared.MirrorSweepPayload{Limit: limit})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(shared.TypeMirrorSweep, payload), nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}

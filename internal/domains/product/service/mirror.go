package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"agromarket-backend/internal/domains/product/model"
	"agromarket-backend/internal/shared"
)

// TaskEnqueuer is satisfied by *asynq.Client
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// MirrorScheduler enqueues image mirroring for products created by a completed import
type MirrorScheduler struct {
	client         TaskEnqueuer
	mirroredPrefix string
}

// NewMirrorScheduler creates the completion hook. Images already under
// mirroredPrefix are treated as local.
func NewMirrorScheduler(client TaskEnqueuer, mirroredPrefix string) *MirrorScheduler {
	return &MirrorScheduler{
		client:         client,
		mirroredPrefix: mirroredPrefix,
	}
}

// ImportCompleted enqueues one task per created product that still points at external images.
// Enqueue failures are logged; the sweep picks those products up later.
func (m *MirrorScheduler) ImportCompleted(ctx context.Context, run *model.ImportRun, created []*model.Product) {
	enqueued := 0
	for _, p := range created {
		if !HasExternalImages(p.Images, m.mirroredPrefix) {
			continue
		}
		if err := EnqueueMirror(ctx, m.client, p.ID, run.ID.String()); err != nil {
			log.Warn().Err(err).
				Str("product_id", p.ID.String()).
				Str("import_id", run.ID.String()).
				Msg("Failed to enqueue image mirroring")
			continue
		}
		enqueued++
	}

	if enqueued > 0 {
		log.Info().
			Str("import_id", run.ID.String()).
			Int("tasks", enqueued).
			Msg("Image mirroring enqueued")
	}
}

// EnqueueMirror queues a product:mirror_images task on the low queue.
// A task already pending for the product is left alone.
func EnqueueMirror(ctx context.Context, client TaskEnqueuer, productID uuid.UUID, importID string) error {
	payload, err := json.Marshal(shared.MirrorImagesPayload{
		ProductID: productID.String(),
		ImportID:  importID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal mirror payload: %w", err)
	}

	task := asynq.NewTask(shared.TypeMirrorProductImages, payload)
	_, err = client.EnqueueContext(ctx, task,
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(3),
		asynq.TaskID("mirror:"+productID.String()),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to enqueue mirror task: %w", err)
	}
	return nil
}

// HasExternalImages reports whether any image URL lives outside mirroredPrefix
func HasExternalImages(images []string, mirroredPrefix string) bool {
	for _, img := range images {
		if mirroredPrefix == "" || !strings.HasPrefix(img, mirroredPrefix) {
			return true
		}
	}
	return false
}

package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"agromarket-backend/internal/domains/product/repository"
	"agromarket-backend/internal/domains/product/service"
	"agromarket-backend/internal/shared"
)

const defaultSweepLimit = 100

// MirrorSweepHandler re-enqueues mirroring for products that still carry
// external images, covering enqueue failures at import time
type MirrorSweepHandler struct {
	products       repository.ProductRepository
	client         service.TaskEnqueuer
	mirroredPrefix string
}

func NewMirrorSweepHandler(products repository.ProductRepository, client service.TaskEnqueuer, mirroredPrefix string) *MirrorSweepHandler {
	return &MirrorSweepHandler{
		products:       products,
		client:         client,
		mirroredPrefix: mirroredPrefix,
	}
}

func (h *MirrorSweepHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload := shared.MirrorSweepPayload{Limit: defaultSweepLimit}
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			log.Error().Err(err).Msg("Failed to unmarshal MirrorSweep payload")
			return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
		}
	}
	if payload.Limit <= 0 {
		payload.Limit = defaultSweepLimit
	}

	products, err := h.products.ListWithExternalImages(ctx, h.mirroredPrefix, payload.Limit)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	enqueued := 0
	for _, p := range products {
		if err := service.EnqueueMirror(ctx, h.client, p.ID, ""); err != nil {
			log.Warn().Err(err).Str("product_id", p.ID.String()).Msg("Sweep failed to enqueue image mirroring")
			continue
		}
		enqueued++
	}

	log.Info().
		Int("candidates", len(products)).
		Int("enqueued", enqueued).
		Msg("Mirror sweep finished")

	return nil
}

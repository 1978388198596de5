package main

import (
	"errors"

	"github.com/hibiken/asynq"

	productJob "agromarket-backend/internal/domains/product/job"
	"agromarket-backend/internal/infrastructure/storage"
	"agromarket-backend/internal/shared"
	"agromarket-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	mirrorImages *productJob.MirrorImagesHandler
	mirrorSweep  *productJob.MirrorSweepHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) (*HandlerRegistry, error) {
	if c.Storage == nil {
		return nil, errors.New("image mirroring requires object storage")
	}

	cfg := c.Config.Import
	downloader := storage.NewDownloader(cfg.DownloadTimeout, cfg.MirrorRate, cfg.MirrorBurst, cfg.ImageMaxSize)
	processor := storage.NewImageProcessor(cfg.ImageMaxSize)

	return &HandlerRegistry{
		mirrorImages: productJob.NewMirrorImagesHandler(
			c.ProductRepo,
			downloader,
			processor,
			c.Storage,
			c.ProductCache,
			c.MirroredPrefix(),
		),
		mirrorSweep: productJob.NewMirrorSweepHandler(c.ProductRepo, c.AsynqClient, c.MirroredPrefix()),
	}, nil
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeMirrorProductImages, h.mirrorImages.ProcessTask)
	mux.HandleFunc(shared.TypeMirrorSweep, h.mirrorSweep.ProcessTask)
}

package job

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
	"agromarket-backend/internal/domains/product/repository"
	"agromarket-backend/internal/domains/product/service"
	"agromarket-backend/internal/infrastructure/metrics"
	"agromarket-backend/internal/infrastructure/storage"
	"agromarket-backend/internal/shared"
)

// ImageFetcher downloads a remote image (storage.Downloader)
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ImageProcessor validates and resizes image bytes (storage.ImageProcessor)
type ImageProcessor interface {
	ValidateImage(data []byte) error
	ProcessImage(data []byte) (map[string][]byte, error)
}

// Uploader puts an object and returns its public URL (storage.MinIOStorage)
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// MirrorImagesHandler copies a product's external images into object storage
// and points the product at the mirrored copies
type MirrorImagesHandler struct {
	products       repository.ProductRepository
	fetcher        ImageFetcher
	processor      ImageProcessor
	uploader       Uploader
	invalidator    service.CacheInvalidator
	mirroredPrefix string
}

func NewMirrorImagesHandler(
	products repository.ProductRepository,
	fetcher ImageFetcher,
	processor ImageProcessor,
	uploader Uploader,
	invalidator service.CacheInvalidator,
	mirroredPrefix string,
) *MirrorImagesHandler {
	return &MirrorImagesHandler{
		products:       products,
		fetcher:        fetcher,
		processor:      processor,
		uploader:       uploader,
		invalidator:    invalidator,
		mirroredPrefix: mirroredPrefix,
	}
}

// ProcessTask mirrors every external image of the product. An image that cannot be
// fetched or processed keeps its original URL; only a failed DB write is retried.
func (h *MirrorImagesHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.MirrorImagesPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal MirrorImages payload")
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	productID, err := uuid.Parse(payload.ProductID)
	if err != nil {
		log.Error().Err(err).Str("product_id", payload.ProductID).Msg("Invalid product id in MirrorImages payload")
		return fmt.Errorf("invalid product id: %w", asynq.SkipRetry)
	}

	product, err := h.products.GetByID(ctx, productID)
	if errors.Is(err, model.ErrProductNotFound) {
		// rolled back or deleted since the task was queued
		log.Info().Str("product_id", payload.ProductID).Msg("Product gone, skipping image mirroring")
		return nil
	}
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}

	images := make([]string, len(product.Images))
	copy(images, product.Images)

	mirrored := 0
	for i, src := range product.Images {
		if h.mirroredPrefix != "" && strings.HasPrefix(src, h.mirroredPrefix) {
			continue
		}
		url, err := h.mirrorOne(ctx, productID, i, src)
		metrics.RecordMirroredImage(err == nil)
		if err != nil {
			log.Warn().
				Err(err).
				Str("product_id", payload.ProductID).
				Str("import_id", payload.ImportID).
				Str("url", src).
				Msg("Failed to mirror image, keeping original URL")
			continue
		}
		images[i] = url
		mirrored++
	}

	if mirrored == 0 {
		return nil
	}

	if err := h.products.UpdateImages(ctx, productID, images); err != nil {
		log.Error().Err(err).Str("product_id", payload.ProductID).Msg("Failed to save mirrored images")
		return fmt.Errorf("update images: %w", err)
	}

	// cached listings and exports still carry the external URLs
	if err := h.invalidator.InvalidateSupplierProducts(ctx, product.SupplierID); err != nil {
		log.Warn().Err(err).
			Str("product_id", payload.ProductID).
			Str("supplier_id", product.SupplierID.String()).
			Msg("Failed to invalidate supplier product cache")
	}

	log.Info().
		Str("product_id", payload.ProductID).
		Str("import_id", payload.ImportID).
		Int("mirrored", mirrored).
		Msg("Product images mirrored")

	return nil
}

func (h *MirrorImagesHandler) mirrorOne(ctx context.Context, productID uuid.UUID, index int, src string) (string, error) {
	data, err := h.fetcher.Fetch(ctx, src)
	if err != nil {
		return "", err
	}
	if err := h.processor.ValidateImage(data); err != nil {
		return "", err
	}
	variants, err := h.processor.ProcessImage(data)
	if err != nil {
		return "", err
	}

	var originalURL string
	for _, name := range []string{storage.VariantOriginal, storage.VariantThumbnail} {
		body, ok := variants[name]
		if !ok {
			continue
		}
		key := fmt.Sprintf("products/%s/%d_%s.jpg", productID, index, name)
		url, err := h.uploader.Upload(ctx, key, body, "image/jpeg")
		if err != nil {
			return "", fmt.Errorf("upload %s: %w", name, err)
		}
		if name == storage.VariantOriginal {
			originalURL = url
		}
	}
	if originalURL == "" {
		return "", fmt.Errorf("no %s variant produced", storage.VariantOriginal)
	}
	return originalURL, nil
}

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"agromarket-backend/internal/domains/product/model"
	"agromarket-backend/internal/domains/product/parser"
	"agromarket-backend/internal/domains/product/validator"
	"agromarket-backend/internal/infrastructure/metrics"
	"agromarket-backend/internal/shared/utils"
)

// ObjectStore is the part of storage.MinIOStorage the importer needs
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

var sourceContentTypes = map[string]string{
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xls":  "application/vnd.ms-excel",
	".csv":  "text/csv",
}

type importService struct {
	engine *Reconciler
	store  ObjectStore
	opts   parser.Options
}

// NewImportService creates the import service. store may be nil, which disables source archival.
func NewImportService(engine *Reconciler, store ObjectStore, opts parser.Options) ImportServiceInterface {
	return &importService{
		engine: engine,
		store:  store,
		opts:   opts,
	}
}

// ImportProducts runs the whole pipeline for one uploaded file.
// File-level problems come back as errors wrapping the model sentinels;
// row problems come back inside the result.
func (s *importService) ImportProducts(ctx context.Context, supplierID uuid.UUID, fileName string, r io.Reader) (*model.ImportResult, error) {
	start := time.Now()
	log.Info().
		Str("supplier_id", supplierID.String()).
		Str("file_name", fileName).
		Msg("Starting product import")

	data, req, err := s.prepare(fileName, r)
	if err != nil {
		metrics.RecordImport(metrics.ImportStats{Status: metrics.RunRejected, Duration: time.Since(start)})
		return nil, err
	}

	req.SupplierID = supplierID
	if s.store != nil {
		req.Archive = func(ctx context.Context, importID uuid.UUID) (string, error) {
			return s.archiveSource(ctx, supplierID, importID, fileName, data)
		}
	}

	result, err := s.engine.Execute(ctx, req)
	if err != nil {
		var runErr *model.RunError
		if errors.As(err, &runErr) {
			metrics.RecordImport(metrics.ImportStats{Status: metrics.RunRolledBack, Duration: time.Since(start)})
		}
		return nil, err
	}

	stats := metrics.ImportStats{
		Status:          metrics.RunCompleted,
		Created:         result.Created,
		Updated:         result.Updated,
		Failed:          result.FailedRows,
		VariationErrors: result.VariationErrors,
		Duration:        time.Since(start),
	}
	if result.ImportID == "" {
		stats.Status = metrics.RunRejected
	}
	metrics.RecordImport(stats)

	return result, nil
}

// ValidateFile is the dry run: parse and validate without touching the catalog or the ledger
func (s *importService) ValidateFile(ctx context.Context, fileName string, r io.Reader) (*model.ImportResult, error) {
	_, req, err := s.prepare(fileName, r)
	if err != nil {
		return nil, err
	}

	if len(req.ValidationErrors) > 0 {
		return rejectedResult(req.TotalRows, req.ValidationErrors, req.Warnings), nil
	}
	return &model.ImportResult{
		Success:        true,
		TotalRows:      req.TotalRows,
		SuccessfulRows: len(req.Rows),
		Errors:         []model.ImportError{},
		Warnings:       req.Warnings,
	}, nil
}

// prepare reads, parses and validates a file into an ImportRequest without a supplier
func (s *importService) prepare(fileName string, r io.Reader) ([]byte, ImportRequest, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.opts.MaxFileSize+1))
	if err != nil {
		return nil, ImportRequest{}, fmt.Errorf("%w: %v", model.ErrInvalidFile, err)
	}

	parsed, err := parser.Parse(fileName, bytes.NewReader(data), s.opts)
	if err != nil {
		log.Warn().Err(err).Str("file_name", fileName).Msg("Import file rejected")
		return nil, ImportRequest{}, err
	}

	report := validator.ValidateRows(parsed.Rows)

	validationErrors := make([]model.ImportError, 0, len(parsed.Errors)+len(report.Errors))
	validationErrors = append(validationErrors, parsed.Errors...)
	validationErrors = append(validationErrors, report.Errors...)
	sort.SliceStable(validationErrors, func(i, j int) bool {
		return validationErrors[i].Row < validationErrors[j].Row
	})

	log.Info().
		Str("file_name", fileName).
		Str("sheet", parsed.Sheet).
		Int("total_rows", parsed.TotalRows).
		Int("valid_rows", len(report.Rows)).
		Int("errors", len(validationErrors)).
		Msg("Import file parsed")

	return data, ImportRequest{
		Source: model.ImportSource{
			FileName: fileName,
			FileSize: int64(len(data)),
		},
		TotalRows:        parsed.TotalRows,
		Rows:             report.Rows,
		ValidationErrors: validationErrors,
		Warnings:         report.Warnings,
	}, nil
}

func (s *importService) archiveSource(ctx context.Context, supplierID, importID uuid.UUID, fileName string, data []byte) (string, error) {
	key := SourceObjectKey(supplierID, importID, fileName)
	ext := strings.ToLower(filepath.Ext(fileName))

	if _, err := s.store.Upload(ctx, key, data, sourceContentTypes[ext]); err != nil {
		return "", err
	}
	return key, nil
}

// SourceObjectKey is where an import's source file is archived:
// imports/<supplier>/<import>/<slugged name><ext>
func SourceObjectKey(supplierID, importID uuid.UUID, fileName string) string {
	base := filepath.Base(fileName)
	ext := strings.ToLower(filepath.Ext(base))
	stem := utils.GenerateSlug(strings.TrimSuffix(base, filepath.Ext(base)))
	if stem == "" {
		stem = "source"
	}
	return fmt.Sprintf("imports/%s/%s/%s%s", supplierID, importID, stem, ext)
}

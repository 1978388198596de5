package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"agromarket-backend/internal/domains/product/model"
)

// ImportServiceInterface is the bulk import entry point shared by the HTTP handler and the CLI
type ImportServiceInterface interface {
	// ImportProducts parses, validates and reconciles one file for a supplier
	ImportProducts(ctx context.Context, supplierID uuid.UUID, fileName string, r io.Reader) (*model.ImportResult, error)
	// ValidateFile stops after parse and validation; nothing is written
	ValidateFile(ctx context.Context, fileName string, r io.Reader) (*model.ImportResult, error)
}

// HistoryServiceInterface reads the import ledger
type HistoryServiceInterface interface {
	ListImports(ctx context.Context, supplierID uuid.UUID, limit, offset int) ([]model.ImportRunView, error)
	GetImport(ctx context.Context, supplierID, importID uuid.UUID) (*model.ImportRunView, error)
}

// CatalogServiceInterface produces the spreadsheets suppliers download
type CatalogServiceInterface interface {
	BuildTemplate() (*excelize.File, error)
	ExportProducts(ctx context.Context, supplierID uuid.UUID, format string, filter model.ProductFilter) (*ExportFile, error)
}

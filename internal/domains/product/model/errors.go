package model

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"agromarket-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidFile        = errors.New("invalid import file")
	ErrUnsupportedFormat  = errors.New("unsupported file format (only .xlsx, .xls, .csv)")
	ErrFileTooLarge       = errors.New("file exceeds maximum size")
	ErrTooManyRows        = errors.New("file exceeds maximum row count")
	ErrEmptyFile          = errors.New("file has no data rows")
	ErrMissingColumns     = errors.New("required columns are missing")
	ErrProductNotFound    = errors.New("product not found")
	ErrVariationNotFound  = errors.New("variation not found")
	ErrImportNotFound     = errors.New("import not found")
	ErrUnauthorized       = errors.New("supplier identity required")
	ErrInvalidExportQuery = errors.New("invalid export parameters")
)

// MissingColumnsError lists the headers a file lacks
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingColumns.Error(), strings.Join(e.Columns, ", "))
}

func (e *MissingColumnsError) Unwrap() error {
	return ErrMissingColumns
}

// RunError is returned when an import aborted on an infrastructure failure.
// Products created before the failure were deleted best-effort; CompensationErr
// holds every delete or ledger write that failed during that rollback.
type RunError struct {
	ImportID        uuid.UUID
	Err             error
	RolledBack      bool
	Deleted         int
	CompensationErr error
}

func (e *RunError) Error() string {
	msg := fmt.Sprintf("import %s aborted: %v", e.ImportID, e.Err)
	if e.CompensationErr != nil {
		msg += fmt.Sprintf(" (rollback incomplete: %v)", e.CompensationErr)
	}
	return msg
}

func (e *RunError) Unwrap() []error {
	errs := []error{e.Err}
	if e.CompensationErr != nil {
		errs = append(errs, e.CompensationErr)
	}
	return errs
}

var productErrorMap = map[error]struct {
	Status  int
	Title   string
	Message string
}{
	ErrInvalidFile: {
		Status:  http.StatusBadRequest,
		Title:   "INVALID_FILE",
		Message: "The uploaded file could not be read",
	},
	ErrUnsupportedFormat: {
		Status:  http.StatusBadRequest,
		Title:   "UNSUPPORTED_FORMAT",
		Message: "Only .xlsx, .xls and .csv files are supported",
	},
	ErrFileTooLarge: {
		Status:  http.StatusBadRequest,
		Title:   "FILE_TOO_LARGE",
		Message: "The uploaded file exceeds the maximum size",
	},
	ErrTooManyRows:        {Status: http.StatusBadRequest, Title: "TOO_MANY_ROWS", Message: "The file exceeds the maximum number of rows"},
	ErrEmptyFile:          {Status: http.StatusBadRequest, Title: "EMPTY_FILE", Message: "The file has no product rows"},
	ErrMissingColumns:     {Status: http.StatusBadRequest, Title: "MISSING_COLUMNS", Message: "Required columns are missing"},
	ErrProductNotFound:    {Status: http.StatusNotFound, Title: "PRODUCT_NOT_FOUND", Message: "The specified product does not exist"},
	ErrImportNotFound:     {Status: http.StatusNotFound, Title: "IMPORT_NOT_FOUND", Message: "The specified import does not exist"},
	ErrUnauthorized:       {Status: http.StatusUnauthorized, Title: "UNAUTHORIZED", Message: "Supplier identity required"},
	ErrInvalidExportQuery: {Status: http.StatusBadRequest, Title: "INVALID_QUERY", Message: "format must be xlsx or csv, filter must be all, active or inactive"},
}

// HandleProductError writes the mapped response for err and reports whether it wrote one
func HandleProductError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	// an aborted run may wrap any sentinel; it is always reported as a rollback
	var runErr *RunError
	if errors.As(err, &runErr) {
		log.Error().Err(err).Str("import_id", runErr.ImportID.String()).Msg("Import aborted")
		response.Error(c, http.StatusInternalServerError, "IMPORT_ROLLED_BACK",
			"Import failed and created products were rolled back")
		return true
	}

	for target, cfg := range productErrorMap {
		if errors.Is(err, target) {
			response.Error(c, cfg.Status, cfg.Title, detailMessage(err, target, cfg.Message))
			return true
		}
	}

	log.Error().Err(err).Msg("Unhandled product error")
	response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	return true
}

// detailMessage keeps wrapped context (e.g. missing column names) when there is any
func detailMessage(err, target error, fallback string) string {
	if err == target {
		return fallback
	}
	return err.Error()
}

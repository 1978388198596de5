package model

import (
	"time"

	"github.com/google/uuid"
)

// ========================================
// IMPORT RUN (LEDGER)
// ========================================

// ImportStatus of a product_imports row
type ImportStatus string

const (
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusRolledBack ImportStatus = "rolled_back"
)

// ImportRun is one invocation of the bulk import.
// Created with status processing, written once more at the end, never deleted.
type ImportRun struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	SupplierID     uuid.UUID     `json:"supplier_id" db:"supplier_id"`
	FileName       string        `json:"file_name" db:"file_name"`
	FileSize       int64         `json:"file_size" db:"file_size"`
	FileKey        *string       `json:"file_key,omitempty" db:"file_key"`
	TotalRows      int           `json:"total_rows" db:"total_rows"`
	SuccessfulRows int           `json:"successful_rows" db:"successful_rows"`
	FailedRows     int           `json:"failed_rows" db:"failed_rows"`
	Status         ImportStatus  `json:"status" db:"status"`
	Errors         []ImportError `json:"errors" db:"errors"` // JSONB
	StartedAt      time.Time     `json:"started_at" db:"started_at"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
}

// HasErrors is what the history view shows; status stays completed either way
func (r *ImportRun) HasErrors() bool {
	return r.FailedRows > 0
}

// ImportRunView is the history representation of a run
type ImportRunView struct {
	*ImportRun
	HasErrors bool `json:"has_errors"`
}

// NewImportRunView wraps a run for the history endpoints
func NewImportRunView(run *ImportRun) ImportRunView {
	return ImportRunView{ImportRun: run, HasErrors: run.HasErrors()}
}

// ImportSource describes the uploaded file
type ImportSource struct {
	FileName string
	FileSize int64
	FileKey  *string
}

// ========================================
// ERRORS & RESULT
// ========================================

// Field tags used by the engine for non-validation errors
const (
	FieldFile      = "file"
	FieldInsert    = "insert"
	FieldUpdate    = "update"
	FieldProcess   = "process"
	FieldVariation = "variation"
)

// ImportError is one row-level failure or warning.
// Row is 1-based with the header offset (first data row is 2); 0 means file-level.
type ImportError struct {
	Row   int    `json:"row"`
	Field string `json:"field"`
	Error string `json:"error"`
	Value string `json:"value,omitempty"`
}

// IsVariation reports whether the error came from the variation writer
func (e ImportError) IsVariation() bool {
	return e.Field == FieldVariation
}

// ImportResult is returned to callers of an import
type ImportResult struct {
	Success         bool          `json:"success"`
	ImportID        string        `json:"importId"`
	TotalRows       int           `json:"totalRows"`
	SuccessfulRows  int           `json:"successfulRows"`
	FailedRows      int           `json:"failedRows"`
	Created         int           `json:"created"`
	Updated         int           `json:"updated"`
	VariationErrors int           `json:"variationErrors"`
	Errors          []ImportError `json:"errors"`
	Warnings        []ImportError `json:"warnings,omitempty"`
}

// Outcome classifies a result for responses and metrics
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomePartial  Outcome = "partial"
	OutcomeRejected Outcome = "rejected"
)

// Outcome distinguishes full success, partial success and total failure
func (r *ImportResult) Outcome() Outcome {
	switch {
	case r.Success:
		return OutcomeSuccess
	case r.ImportID == "" || r.SuccessfulRows == 0:
		return OutcomeRejected
	default:
		return OutcomePartial
	}
}

package service

import (
	"github.com/google/uuid"

	"agromarket-backend/internal/domains/product/model"
)

// buildResult turns the counters of a finished run into its ImportResult.
// Any recorded error, variation errors included, makes the run unsuccessful.
func buildResult(importID uuid.UUID, totalRows int, rc *runContext, warnings []model.ImportError) *model.ImportResult {
	failures := rc.errors.Len()

	return &model.ImportResult{
		Success:         failures == 0,
		ImportID:        importID.String(),
		TotalRows:       totalRows,
		SuccessfulRows:  rc.created + rc.updated,
		FailedRows:      failures,
		Created:         rc.created,
		Updated:         rc.updated,
		VariationErrors: rc.errors.VariationFailures(),
		Errors:          rc.errors.Items(),
		Warnings:        warnings,
	}
}

// rejectedResult is returned when pre-flight validation fails; no run exists
func rejectedResult(totalRows int, errs, warnings []model.ImportError) *model.ImportResult {
	if errs == nil {
		errs = []model.ImportError{}
	}
	return &model.ImportResult{
		Success:        false,
		ImportID:       "",
		TotalRows:      totalRows,
		SuccessfulRows: 0,
		FailedRows:     len(errs),
		Errors:         errs,
		Warnings:       warnings,
	}
}

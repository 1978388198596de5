package service

import (
	"time"

	"github.com/google/uuid"

	"agromarket-backend/internal/domains/product/model"
)

// ErrorList accumulates the errors of one import run, in the order they occurred
type ErrorList struct {
	items []model.ImportError
}

func (l *ErrorList) Add(e model.ImportError) {
	l.items = append(l.items, e)
}

// Items returns a copy; never nil
func (l *ErrorList) Items() []model.ImportError {
	out := make([]model.ImportError, len(l.items))
	copy(out, l.items)
	return out
}

func (l *ErrorList) Len() int {
	return len(l.items)
}

// VariationFailures counts the entries recorded by the variation writer
func (l *ErrorList) VariationFailures() int {
	n := 0
	for _, e := range l.items {
		if e.IsVariation() {
			n++
		}
	}
	return n
}

// runContext is the mutable state of a single reconciliation pass.
// It is owned by one goroutine and never shared between runs.
type runContext struct {
	supplierID uuid.UUID
	importID   uuid.UUID

	created int
	updated int
	errors  ErrorList

	// createdIDs is the compensation log, in creation order
	createdIDs      []uuid.UUID
	createdProducts []*model.Product

	lastSlugAt time.Time
}

func newRunContext(supplierID, importID uuid.UUID) *runContext {
	return &runContext{
		supplierID: supplierID,
		importID:   importID,
		createdIDs: make([]uuid.UUID, 0),
	}
}

func (rc *runContext) recordCreated(p *model.Product) {
	rc.created++
	rc.createdIDs = append(rc.createdIDs, p.ID)
	rc.createdProducts = append(rc.createdProducts, p)
}

func (rc *runContext) rowError(row int, field, msg, value string) {
	rc.errors.Add(model.ImportError{Row: row, Field: field, Error: msg, Value: value})
}

// nextSlugTime returns a millisecond timestamp strictly later than the previous
// one handed out in this run, so equal names never produce equal slugs.
func (rc *runContext) nextSlugTime(now func() time.Time) time.Time {
	t := now().Truncate(time.Millisecond)
	if !t.After(rc.lastSlugAt) {
		t = rc.lastSlugAt.Add(time.Millisecond)
	}
	rc.lastSlugAt = t
	return t
}

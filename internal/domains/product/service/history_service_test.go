package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agromarket-backend/internal/domains/product/model"
)

func seedRuns(t *testing.T, repo *fakeImportRepo, supplierID uuid.UUID, failed ...int) {
	t.Helper()
	for _, n := range failed {
		run := &model.ImportRun{SupplierID: supplierID, FileName: "urunler.xlsx", TotalRows: 5}
		require.NoError(t, repo.Create(context.Background(), run))
		run.SuccessfulRows = 5 - n
		run.FailedRows = n
		run.Status = model.ImportStatusCompleted
		run.Errors = []model.ImportError{}
		require.NoError(t, repo.Finalize(context.Background(), run))
	}
}

func TestListImports_NewestFirstWithHasErrors(t *testing.T) {
	repo := newFakeImportRepo()
	supplierID := uuid.New()
	seedRuns(t, repo, supplierID, 0, 2)
	svc := NewHistoryService(repo, nil)

	views, err := svc.ListImports(context.Background(), supplierID, 0, 0)
	require.NoError(t, err)

	require.Len(t, views, 2)
	assert.Equal(t, 2, views[0].FailedRows)
	assert.True(t, views[0].HasErrors)
	assert.False(t, views[1].HasErrors)
}

func TestListImports_CachesFirstPage(t *testing.T) {
	repo := newFakeImportRepo()
	cache := newFakeCache()
	supplierID := uuid.New()
	seedRuns(t, repo, supplierID, 1)
	svc := NewHistoryService(repo, cache)

	first, err := svc.ListImports(context.Background(), supplierID, DefaultHistoryLimit, 0)
	require.NoError(t, err)
	second, err := svc.ListImports(context.Background(), supplierID, DefaultHistoryLimit, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.listCalls)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.True(t, second[0].HasErrors)

	_, err = svc.ListImports(context.Background(), supplierID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls, "other pages bypass the cache")
}

func TestListImports_InvalidationDropsCachedPage(t *testing.T) {
	repo := newFakeImportRepo()
	cache := newFakeCache()
	supplierID := uuid.New()
	seedRuns(t, repo, supplierID, 0)
	svc := NewHistoryService(repo, cache)

	_, err := svc.ListImports(context.Background(), supplierID, DefaultHistoryLimit, 0)
	require.NoError(t, err)

	require.NoError(t, NewProductCacheInvalidator(cache).InvalidateSupplierProducts(context.Background(), supplierID))

	_, err = svc.ListImports(context.Background(), supplierID, DefaultHistoryLimit, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
}

func TestListImports_ClampsLimit(t *testing.T) {
	repo := newFakeImportRepo()
	supplierID := uuid.New()
	failed := make([]int, MaxHistoryLimit+5)
	seedRuns(t, repo, supplierID, failed...)
	svc := NewHistoryService(repo, nil)

	views, err := svc.ListImports(context.Background(), supplierID, 1000, -3)
	require.NoError(t, err)
	assert.Len(t, views, MaxHistoryLimit)
}

func TestGetImport(t *testing.T) {
	repo := newFakeImportRepo()
	supplierID := uuid.New()
	seedRuns(t, repo, supplierID, 1)
	svc := NewHistoryService(repo, nil)
	id := repo.order[0]

	view, err := svc.GetImport(context.Background(), supplierID, id)
	require.NoError(t, err)
	assert.Equal(t, id, view.ID)
	assert.True(t, view.HasErrors)

	_, err = svc.GetImport(context.Background(), uuid.New(), id)
	assert.ErrorIs(t, err, model.ErrImportNotFound)
}

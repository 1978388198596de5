package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agromarket-backend/internal/domains/product/model"
	"agromarket-backend/internal/domains/product/parser"
)

const validCSV = `name,category,unit,base price,price,stock
Domates,sebzeler,kg,"25,50",30,100
Patates,sebzeler,kg,12,15,
Zeytinyağı 1 LT,zeytinyagli,adet,100,120,50
`

const invalidCSV = `name,category,unit,base price,price
Domates,sebzeler,kg,25,30
Patates,sebzeler,kg,12,-5
`

type importFixture struct {
	*reconcilerFixture
	store   *fakeStore
	service ImportServiceInterface
}

func newImportFixture() *importFixture {
	rf := newReconcilerFixture(DefaultBatchSize)
	store := newFakeStore()
	return &importFixture{
		reconcilerFixture: rf,
		store:             store,
		service:           NewImportService(rf.engine, store, parser.DefaultOptions()),
	}
}

func TestImportProducts_CSVEndToEnd(t *testing.T) {
	f := newImportFixture()

	result, err := f.service.ImportProducts(context.Background(), f.supplierID, "urunler.csv", strings.NewReader(validCSV))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 3, result.Created)

	oil := f.products.byName("Zeytinyağı")
	require.Len(t, oil, 1, "variation tokens are stripped from the product name")
	variations, _ := f.variations.ListByProduct(context.Background(), oil[0].ID)
	require.Len(t, variations, 1)
	assert.Equal(t, "1 LT", variations[0].VariationValue)

	patates := f.products.byName("Patates")
	require.Len(t, patates, 1)
	assert.Equal(t, model.DefaultStock, patates[0].Stock)

	run := f.imports.only()
	require.NotNil(t, run.FileKey)
	expectedKey := "imports/" + f.supplierID.String() + "/" + result.ImportID + "/urunler.csv"
	assert.Equal(t, expectedKey, *run.FileKey)
	assert.Equal(t, []byte(validCSV), f.store.objects[expectedKey])
	assert.Equal(t, "text/csv", f.store.types[expectedKey])
}

func TestImportProducts_ReimportUpdates(t *testing.T) {
	f := newImportFixture()

	_, err := f.service.ImportProducts(context.Background(), f.supplierID, "urunler.csv", strings.NewReader(validCSV))
	require.NoError(t, err)
	slug := f.products.byName("Domates")[0].Slug

	result, err := f.service.ImportProducts(context.Background(), f.supplierID, "urunler.csv", strings.NewReader(validCSV))
	require.NoError(t, err)

	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 3, result.Updated)
	assert.Equal(t, 3, f.products.count())
	assert.Equal(t, slug, f.products.byName("Domates")[0].Slug)
}

func TestImportProducts_InvalidRowRejectsWholeFile(t *testing.T) {
	f := newImportFixture()

	result, err := f.service.ImportProducts(context.Background(), f.supplierID, "urunler.csv", strings.NewReader(invalidCSV))
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Empty(t, result.ImportID)
	assert.Equal(t, 2, result.TotalRows)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Equal(t, "price", result.Errors[0].Field)

	assert.Equal(t, 0, f.products.count())
	assert.Empty(t, f.imports.order)
	assert.Empty(t, f.store.objects)
}

func TestImportProducts_FileLevelErrors(t *testing.T) {
	f := newImportFixture()

	t.Run("unsupported format", func(t *testing.T) {
		_, err := f.service.ImportProducts(context.Background(), f.supplierID, "urunler.pdf", strings.NewReader("x"))
		assert.ErrorIs(t, err, model.ErrUnsupportedFormat)
	})

	t.Run("missing columns", func(t *testing.T) {
		_, err := f.service.ImportProducts(context.Background(), f.supplierID, "urunler.csv", strings.NewReader("name,category\nDomates,sebzeler\n"))
		assert.ErrorIs(t, err, model.ErrMissingColumns)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := f.service.ImportProducts(context.Background(), f.supplierID, "urunler.csv", strings.NewReader("name,category,unit,base price,price\n"))
		assert.ErrorIs(t, err, model.ErrEmptyFile)
	})

	assert.Empty(t, f.imports.order)
}

func TestImportProducts_ArchiveIsOptional(t *testing.T) {
	rf := newReconcilerFixture(DefaultBatchSize)
	svc := NewImportService(rf.engine, nil, parser.DefaultOptions())

	result, err := svc.ImportProducts(context.Background(), rf.supplierID, "urunler.csv", strings.NewReader(validCSV))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Nil(t, rf.imports.only().FileKey)
}

func TestValidateFile_WritesNothing(t *testing.T) {
	f := newImportFixture()

	result, err := f.service.ValidateFile(context.Background(), "urunler.csv", strings.NewReader(validCSV))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 3, result.SuccessfulRows)
	assert.Empty(t, result.ImportID)
	assert.Equal(t, 0, f.products.count())
	assert.Empty(t, f.imports.order)

	result, err = f.service.ValidateFile(context.Background(), "urunler.csv", strings.NewReader(invalidCSV))
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Len(t, result.Errors, 1)
}

func TestSourceObjectKey(t *testing.T) {
	supplierID := uuid.MustParse("7d7c3e4f-2c1e-4c55-9a6e-3b9d7f1a2b3c")
	importID := uuid.MustParse("0b8f6a2e-5d4c-4e3b-8a7f-1c2d3e4f5a6b")

	assert.Equal(t,
		"imports/7d7c3e4f-2c1e-4c55-9a6e-3b9d7f1a2b3c/0b8f6a2e-5d4c-4e3b-8a7f-1c2d3e4f5a6b/urun-listesi-ekim.xlsx",
		SourceObjectKey(supplierID, importID, "../Ürün Listesi Ekim.XLSX"))
	assert.Equal(t,
		"imports/7d7c3e4f-2c1e-4c55-9a6e-3b9d7f1a2b3c/0b8f6a2e-5d4c-4e3b-8a7f-1c2d3e4f5a6b/source.csv",
		SourceObjectKey(supplierID, importID, "???.csv"))
}

package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"agromarket-backend/internal/domains/product/model"
	"agromarket-backend/internal/domains/product/parser"
)

func catalogProducts(supplierID uuid.UUID) []*model.Product {
	description := "Taze ve lezzetli"
	return []*model.Product{
		{
			ID: uuid.New(), SupplierID: supplierID, Name: "Domates", Slug: "domates-1",
			Category: "sebzeler", CategoryName: "Sebzeler", Unit: "kg",
			BasePrice: decimal.RequireFromString("25.5"), Price: decimal.NewFromInt(30),
			Stock: 100, Origin: "Antalya", Quality: "premium", Availability: "plenty",
			Description: &description, Images: []string{"https://cdn.example.com/d1.jpg", "https://cdn.example.com/d2.jpg"},
			IsActive: true,
		},
		{
			ID: uuid.New(), SupplierID: supplierID, Name: "Patates", Slug: "patates-1",
			Category: "sebzeler", CategoryName: "Sebzeler", Unit: "kg",
			BasePrice: decimal.NewFromInt(12), Price: decimal.NewFromInt(15),
			Stock: 0, Origin: "Niğde", Quality: "standart", Availability: "last",
			Images: []string{}, IsActive: false,
		},
	}
}

func TestBuildTemplate(t *testing.T) {
	svc := NewCatalogService(newFakeProductRepo(), nil)

	f, err := svc.BuildTemplate()
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetInstructions, SheetProducts, SheetCategories, SheetUnits}, f.GetSheetList())

	rows, err := f.GetRows(SheetProducts)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, parser.Headers(), rows[0])
	assert.Equal(t, "Domates", rows[1][0])

	categories, err := f.GetRows(SheetCategories)
	require.NoError(t, err)
	assert.Len(t, categories, len(model.Categories)+1)
	assert.Equal(t, []string{"sebzeler", "Sebzeler"}, categories[1])
}

func TestBuildTemplate_ExampleRowImports(t *testing.T) {
	svc := NewCatalogService(newFakeProductRepo(), nil)
	f, err := svc.BuildTemplate()
	require.NoError(t, err)

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	parsed, err := parser.Parse("sablon.xlsx", bytes.NewReader(buf.Bytes()), parser.DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, parsed.Errors)
	require.Len(t, parsed.Rows, 1)
	assert.Equal(t, "Domates", parsed.Rows[0].Name)
}

func TestExportProducts_CSV(t *testing.T) {
	supplierID := uuid.New()
	repo := newFakeProductRepo(catalogProducts(supplierID)...)
	svc := NewCatalogService(repo, nil)

	file, err := svc.ExportProducts(context.Background(), supplierID, "csv", model.FilterActive)
	require.NoError(t, err)

	assert.Equal(t, csvContentType, file.ContentType)
	assert.True(t, strings.HasSuffix(file.FileName, ".csv"))
	assert.True(t, strings.HasPrefix(file.FileName, "urunler-active-"))

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(string(file.Data), "\ufeff")), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(parser.Headers(), ","), lines[0])
	assert.Contains(t, lines[1], "Domates,sebzeler,kg,25.5,30,100,Antalya,premium,plenty")
}

func TestExportProducts_XLSXRoundTrip(t *testing.T) {
	supplierID := uuid.New()
	repo := newFakeProductRepo(catalogProducts(supplierID)...)
	svc := NewCatalogService(repo, nil)

	file, err := svc.ExportProducts(context.Background(), supplierID, "xlsx", model.FilterAll)
	require.NoError(t, err)
	assert.Equal(t, xlsxContentType, file.ContentType)

	wb, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	assert.Equal(t, []string{SheetProducts}, wb.GetSheetList())

	parsed, err := parser.Parse(file.FileName, bytes.NewReader(file.Data), parser.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 2)
	assert.Empty(t, parsed.Errors)

	domates := parsed.Rows[0]
	assert.Equal(t, "Domates", domates.Name)
	require.NotNil(t, domates.BasePrice)
	assert.True(t, decimal.RequireFromString("25.5").Equal(*domates.BasePrice))
	assert.Equal(t, []string{"https://cdn.example.com/d1.jpg", "https://cdn.example.com/d2.jpg"}, domates.Images)
	require.NotNil(t, parsed.Rows[1].Stock)
	assert.Equal(t, 0, *parsed.Rows[1].Stock)
}

func TestExportProducts_UsesCacheUntilInvalidated(t *testing.T) {
	supplierID := uuid.New()
	repo := newFakeProductRepo(catalogProducts(supplierID)...)
	cache := newFakeCache()
	svc := NewCatalogService(repo, cache)

	_, err := svc.ExportProducts(context.Background(), supplierID, "csv", model.FilterAll)
	require.NoError(t, err)
	ok, _ := cache.Exists(context.Background(), SupplierProductsCacheKey(supplierID, model.FilterAll))
	assert.True(t, ok)

	require.NoError(t, NewProductCacheInvalidator(cache).InvalidateSupplierProducts(context.Background(), supplierID))
	ok, _ = cache.Exists(context.Background(), SupplierProductsCacheKey(supplierID, model.FilterAll))
	assert.False(t, ok)
}

func TestExportProducts_RejectsUnknownParameters(t *testing.T) {
	svc := NewCatalogService(newFakeProductRepo(), nil)

	_, err := svc.ExportProducts(context.Background(), uuid.New(), "pdf", model.FilterAll)
	assert.ErrorIs(t, err, model.ErrInvalidExportQuery)

	_, err = svc.ExportProducts(context.Background(), uuid.New(), "csv", model.ProductFilter("archived"))
	assert.ErrorIs(t, err, model.ErrInvalidExportQuery)
}

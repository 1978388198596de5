package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"agromarket-backend/internal/domains/product/model"
	"agromarket-backend/internal/domains/product/parser"
	"agromarket-backend/internal/domains/product/repository"
	"agromarket-backend/pkg/cache"
)

// Export formats
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// Template sheet names
const (
	SheetInstructions = "Talimatlar"
	SheetProducts     = "Ürünler"
	SheetCategories   = "Kategoriler"
	SheetUnits        = "Birimler"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	csvContentType  = "text/csv; charset=utf-8"
)

var templateInstructions = []string{
	"Ürün İçe Aktarma Şablonu",
	"",
	"1. Ürünlerinizi \"Ürünler\" sayfasına, ilk satırdaki başlıkları değiştirmeden girin.",
	"2. Ürün Adı, Kategori, Birim, Taban Fiyat ve Satış Fiyatı zorunludur.",
	"3. Kategori ve birim değerleri \"Kategoriler\" ve \"Birimler\" sayfalarındaki listelerden seçilmelidir.",
	"4. Fiyatlar 25,50 veya 25.50 biçiminde yazılabilir.",
	"5. Stok boş bırakılırsa 100, köken boş bırakılırsa Türkiye kabul edilir.",
	"6. Durum: bol, limited veya son.",
	"7. Görsel URLlerini virgülle ayırın (en fazla 10).",
	"8. Ürün adındaki varyasyonlar otomatik algılanır: \"Zeytinyağı 1 LT\", \"Sabun Lavanta\", \"Su *6\".",
	"9. Aynı isimli mevcut bir ürün varsa güncellenir, yoksa yeni ürün oluşturulur.",
	"10. Bir dosyada en fazla 1000 satır bulunabilir.",
}

// ExportFile is a rendered export ready to be streamed
type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

type catalogService struct {
	products repository.ProductRepository
	cache    cache.Cache
}

// NewCatalogService creates the template/export service. cache may be nil.
func NewCatalogService(products repository.ProductRepository, c cache.Cache) CatalogServiceInterface {
	return &catalogService{
		products: products,
		cache:    c,
	}
}

// BuildTemplate renders the import template workbook
func (s *catalogService) BuildTemplate() (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetInstructions); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for i, line := range templateInstructions {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		f.SetCellValue(SheetInstructions, cell, line)
	}
	f.SetColWidth(SheetInstructions, "A", "A", 110)

	if _, err := f.NewSheet(SheetProducts); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := writeHeaderRow(f, SheetProducts); err != nil {
		return nil, err
	}
	for i, col := range parser.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue(SheetProducts, cell, col.Example)
	}

	if _, err := f.NewSheet(SheetCategories); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetCellValue(SheetCategories, "A1", "Kategori")
	f.SetCellValue(SheetCategories, "B1", "Görünen Ad")
	for i, category := range model.Categories {
		f.SetCellValue(SheetCategories, fmt.Sprintf("A%d", i+2), category)
		f.SetCellValue(SheetCategories, fmt.Sprintf("B%d", i+2), model.CategoryDisplayName(category))
	}
	f.SetColWidth(SheetCategories, "A", "B", 20)

	if _, err := f.NewSheet(SheetUnits); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	lists := [][]string{model.Units, model.Qualities, {"bol", "limited", "son"}}
	for colIdx, title := range []string{"Birim", "Kalite", "Durum"} {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		f.SetCellValue(SheetUnits, cell, title)
		for rowIdx, value := range lists[colIdx] {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(SheetUnits, cell, value)
		}
	}
	f.SetColWidth(SheetUnits, "A", "C", 15)

	if idx, err := f.GetSheetIndex(SheetProducts); err == nil {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

// ExportProducts renders a supplier's products with the template headers so the file can be re-imported
func (s *catalogService) ExportProducts(ctx context.Context, supplierID uuid.UUID, format string, filter model.ProductFilter) (*ExportFile, error) {
	format = strings.ToLower(format)
	if format == "" {
		format = FormatXLSX
	}
	if filter == "" {
		filter = model.FilterAll
	}
	if format != FormatXLSX && format != FormatCSV {
		return nil, model.ErrInvalidExportQuery
	}
	if filter != model.FilterAll && filter != model.FilterActive && filter != model.FilterInactive {
		return nil, model.ErrInvalidExportQuery
	}

	products, err := s.listProducts(ctx, supplierID, filter)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("urunler-%s-%s.%s", filter, time.Now().Format("20060102-150405"), format)
	if format == FormatCSV {
		data, err := buildProductsCSV(products)
		if err != nil {
			return nil, err
		}
		return &ExportFile{FileName: name, ContentType: csvContentType, Data: data}, nil
	}

	f, err := buildProductsWorkbook(products)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return &ExportFile{FileName: name, ContentType: xlsxContentType, Data: buf.Bytes()}, nil
}

func (s *catalogService) listProducts(ctx context.Context, supplierID uuid.UUID, filter model.ProductFilter) ([]*model.Product, error) {
	key := SupplierProductsCacheKey(supplierID, filter)
	if s.cache != nil {
		var cached []*model.Product
		if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
			return cached, nil
		}
	}

	products, err := s.products.ListBySupplier(ctx, supplierID, filter)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, products, productsCacheTTL); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Supplier products cache write failed")
		}
	}
	return products, nil
}

func writeHeaderRow(f *excelize.File, sheet string) error {
	for i, col := range parser.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, col.Header)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, colName, colName, col.Width)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9EAD3"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(parser.Columns), 1)
	return f.SetCellStyle(sheet, "A1", last, headerStyle)
}

// productRecord lays out one product in parser.Columns order
func productRecord(p *model.Product) []string {
	description := ""
	if p.Description != nil {
		description = *p.Description
	}
	return []string{
		p.Name,
		p.Category,
		p.Unit,
		p.BasePrice.String(),
		p.Price.String(),
		strconv.Itoa(p.Stock),
		p.Origin,
		p.Quality,
		p.Availability,
		description,
		strings.Join(p.Images, ", "),
	}
}

func buildProductsWorkbook(products []*model.Product) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetProducts); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := writeHeaderRow(f, SheetProducts); err != nil {
		return nil, err
	}

	for i, p := range products {
		rowNum := i + 2
		for colIdx, value := range productRecord(p) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowNum)
			switch parser.Columns[colIdx].Key {
			case parser.ColBasePrice:
				f.SetCellValue(SheetProducts, cell, p.BasePrice.InexactFloat64())
			case parser.ColPrice:
				f.SetCellValue(SheetProducts, cell, p.Price.InexactFloat64())
			case parser.ColStock:
				f.SetCellValue(SheetProducts, cell, p.Stock)
			default:
				f.SetCellValue(SheetProducts, cell, value)
			}
		}
	}
	return f, nil
}

func buildProductsCSV(products []*model.Product) ([]byte, error) {
	var buf bytes.Buffer
	// BOM so spreadsheet apps detect UTF-8
	buf.WriteString("\ufeff")

	w := csv.NewWriter(&buf)
	if err := w.Write(parser.Headers()); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, p := range products {
		if err := w.Write(productRecord(p)); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

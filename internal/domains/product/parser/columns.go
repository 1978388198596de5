package parser

import (
	"strings"

	"agromarket-backend/internal/shared/utils"
)

// Canonical column keys
const (
	ColName         = "name"
	ColCategory     = "category"
	ColUnit         = "unit"
	ColBasePrice    = "basePrice"
	ColPrice        = "price"
	ColStock        = "stock"
	ColOrigin       = "origin"
	ColQuality      = "quality"
	ColAvailability = "availability"
	ColDescription  = "description"
	ColImages       = "images"
)

// Column describes one spreadsheet column as written by the template and export
type Column struct {
	Key      string
	Header   string
	Width    float64
	Required bool
	Example  interface{}
}

// Columns in template order
var Columns = []Column{
	{Key: ColName, Header: "Ürün Adı", Width: 30, Required: true, Example: "Domates"},
	{Key: ColCategory, Header: "Kategori", Width: 15, Required: true, Example: "sebzeler"},
	{Key: ColUnit, Header: "Birim", Width: 10, Required: true, Example: "kg"},
	{Key: ColBasePrice, Header: "Taban Fiyat", Width: 15, Required: true, Example: 25.50},
	{Key: ColPrice, Header: "Satış Fiyatı", Width: 15, Required: true, Example: 30.00},
	{Key: ColStock, Header: "Stok", Width: 10, Example: 100},
	{Key: ColOrigin, Header: "Köken", Width: 15, Example: "Türkiye"},
	{Key: ColQuality, Header: "Kalite", Width: 12, Example: "standart"},
	{Key: ColAvailability, Header: "Durum", Width: 12, Example: "bol"},
	{Key: ColDescription, Header: "Açıklama", Width: 40, Example: "Taze ve lezzetli"},
	{Key: ColImages, Header: "Görsel URLleri", Width: 50, Example: "https://example.com/image1.jpg, https://example.com/image2.jpg"},
}

// Headers returns the header row in template order
func Headers() []string {
	headers := make([]string, len(Columns))
	for i, col := range Columns {
		headers[i] = col.Header
	}
	return headers
}

// Aliases are stored folded (see foldHeader), so "Ürün Adı", "URUN ADI" and
// "urun  adi" all hit the same entry.
var columnAliases = map[string]string{
	"urun adi":        ColName,
	"name":            ColName,
	"product name":    ColName,
	"kategori":        ColCategory,
	"category":        ColCategory,
	"birim":           ColUnit,
	"unit":            ColUnit,
	"taban fiyat":     ColBasePrice,
	"taban fiyati":    ColBasePrice,
	"base price":      ColBasePrice,
	"satis fiyati":    ColPrice,
	"sale price":      ColPrice,
	"price":           ColPrice,
	"stok":            ColStock,
	"stock":           ColStock,
	"koken":           ColOrigin,
	"origin":          ColOrigin,
	"kalite":          ColQuality,
	"quality":         ColQuality,
	"durum":           ColAvailability,
	"status":          ColAvailability,
	"availability":    ColAvailability,
	"aciklama":        ColDescription,
	"description":     ColDescription,
	"gorsel urlleri":  ColImages,
	"gorsel url'leri": ColImages,
	"image urls":      ColImages,
	"images":          ColImages,
}

// foldHeader lowercases, strips diacritics and collapses whitespace
func foldHeader(h string) string {
	folded := strings.ToLower(utils.RemoveDiacritics(strings.TrimPrefix(h, "\ufeff")))
	return strings.Join(strings.Fields(folded), " ")
}

// mapColumns returns column key -> index for every recognised header.
// The first occurrence of a key wins.
func mapColumns(header []string) map[string]int {
	cols := make(map[string]int)
	for i, h := range header {
		key, ok := columnAliases[foldHeader(h)]
		if !ok {
			continue
		}
		if _, seen := cols[key]; !seen {
			cols[key] = i
		}
	}
	return cols
}

func missingColumns(cols map[string]int, required []string) []string {
	var missing []string
	for _, key := range required {
		if _, ok := cols[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

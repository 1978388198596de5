package parser

import (
	"fmt"
	"io"

	"agromarket-backend/internal/domains/product/model"

	"github.com/xuri/excelize/v2"
)

// productSheetNames are tried in order before falling back to the first sheet
var productSheetNames = []string{"Ürünler", "Products", "Urunler", "Uruler", "Sheet1", "Worksheet"}

var excelLayout = layout{
	required:          []string{ColName, ColCategory, ColUnit, ColPrice},
	basePriceFallback: true,
}

// ParseExcel reads the product sheet of an xlsx workbook
func ParseExcel(r io.Reader, opts Options) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidFile, err)
	}
	defer f.Close()

	sheet := pickSheet(f.GetSheetList())
	if sheet == "" {
		return nil, model.ErrEmptyFile
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet %s: %v", model.ErrInvalidFile, sheet, err)
	}

	res, err := parseRecords(rows, excelLayout, opts)
	if err != nil {
		return nil, err
	}
	res.Sheet = sheet

	return res, nil
}

func pickSheet(sheets []string) string {
	for _, name := range productSheetNames {
		for _, s := range sheets {
			if s == name {
				return s
			}
		}
	}
	if len(sheets) > 0 {
		return sheets[0]
	}
	return ""
}

package parser

import (
	"strings"

	"agromarket-backend/internal/domains/product/model"
	"agromarket-backend/internal/shared/utils"
)

// layout describes how one file format treats its header
type layout struct {
	required []string
	// basePriceFallback copies price into an empty base price cell
	basePriceFallback bool
}

// parseRecords turns header + data records into raw rows.
// Row numbers are spreadsheet line numbers: the header is line 1.
func parseRecords(records [][]string, l layout, opts Options) (*Result, error) {
	if len(records) == 0 {
		return nil, model.ErrEmptyFile
	}

	cols := mapColumns(records[0])
	if missing := missingColumns(cols, l.required); len(missing) > 0 {
		return nil, &model.MissingColumnsError{Columns: missing}
	}

	res := &Result{}
	for i, record := range records[1:] {
		if isEmptyRecord(record) {
			continue
		}

		res.TotalRows++
		if opts.MaxRows > 0 && res.TotalRows > opts.MaxRows {
			return nil, model.ErrTooManyRows
		}

		row, rowErrs := parseRow(record, cols, i+2, l)
		if len(rowErrs) > 0 {
			res.Errors = append(res.Errors, rowErrs...)
			continue
		}
		res.Rows = append(res.Rows, row)
	}

	if res.TotalRows == 0 {
		return nil, model.ErrEmptyFile
	}

	return res, nil
}

func isEmptyRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseRow(record []string, cols map[string]int, rowNum int, l layout) (model.RawRow, []model.ImportError) {
	getCol := func(key string) string {
		if idx, ok := cols[key]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	var errs []model.ImportError
	row := model.RawRow{
		Row:          rowNum,
		Name:         getCol(ColName),
		Category:     getCol(ColCategory),
		Unit:         getCol(ColUnit),
		Origin:       getCol(ColOrigin),
		Quality:      getCol(ColQuality),
		Availability: getCol(ColAvailability),
		Description:  getCol(ColDescription),
		Images:       utils.SplitList(getCol(ColImages)),
	}

	if val := getCol(ColPrice); val != "" {
		price, err := utils.ParseLocaleDecimal(val)
		if err != nil {
			errs = append(errs, model.ImportError{Row: rowNum, Field: ColPrice, Value: val, Error: "price must be a number"})
		} else {
			row.Price = &price
		}
	}

	if val := getCol(ColBasePrice); val != "" {
		basePrice, err := utils.ParseLocaleDecimal(val)
		if err != nil {
			errs = append(errs, model.ImportError{Row: rowNum, Field: ColBasePrice, Value: val, Error: "base price must be a number"})
		} else {
			row.BasePrice = &basePrice
		}
	} else if l.basePriceFallback && row.Price != nil {
		basePrice := *row.Price
		row.BasePrice = &basePrice
	}

	if val := getCol(ColStock); val != "" {
		stock, err := utils.ParseLocaleDecimal(val)
		if err != nil || !stock.IsInteger() {
			errs = append(errs, model.ImportError{Row: rowNum, Field: ColStock, Value: val, Error: "stock must be a whole number"})
		} else {
			n := int(stock.IntPart())
			row.Stock = &n
		}
	}

	if row.Name != "" {
		groups, baseName := ExtractVariations(row.Name)
		for _, problem := range ValidateVariations(groups) {
			errs = append(errs, model.ImportError{Row: rowNum, Field: "variations", Value: row.Name, Error: problem})
		}
		if len(groups) > 0 {
			row.Variations = groups
			if baseName != "" {
				row.Name = baseName
			}
		}
	}

	return row, errs
}

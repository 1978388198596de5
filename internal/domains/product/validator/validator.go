package validator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"agromarket-backend/internal/domains/product/model"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/shopspring/decimal"
)

const (
	maxNameLength        = 200
	maxOriginLength      = 100
	maxDescriptionLength = 1000
	maxImages            = 10
	warnStockLimit       = 1_000_000
)

var warnPriceLimit = decimal.NewFromInt(1_000_000)

// fieldOrder keeps reported errors in column order
var fieldOrder = []string{
	"name", "category", "unit", "basePrice", "price", "stock",
	"origin", "quality", "availability", "description", "images",
}

// Report is the outcome of validating every row of a file
type Report struct {
	Rows     []model.ProductRow
	Errors   []model.ImportError
	Warnings []model.ImportError
}

// Valid reports whether the import may proceed
func (r *Report) Valid() bool {
	return len(r.Errors) == 0
}

// ValidateRows validates and normalizes rows in order.
// Rows without a parser-assigned number get index+2 (line 1 is the header).
func ValidateRows(rows []model.RawRow) *Report {
	report := &Report{}
	for i, raw := range rows {
		if raw.Row == 0 {
			raw.Row = i + 2
		}

		row, errs, warnings := ValidateRow(raw)
		report.Warnings = append(report.Warnings, warnings...)
		if len(errs) > 0 {
			report.Errors = append(report.Errors, errs...)
			continue
		}
		report.Rows = append(report.Rows, row)
	}
	return report
}

// ValidateRow checks one row and, when it passes, returns its normalized form
func ValidateRow(raw model.RawRow) (model.ProductRow, []model.ImportError, []model.ImportError) {
	in := prepare(raw)

	err := validation.ValidateStruct(&in,
		validation.Field(&in.Name,
			validation.Required.Error("name is required"),
			validation.RuneLength(1, maxNameLength).Error(fmt.Sprintf("name must be at most %d characters", maxNameLength)),
		),
		validation.Field(&in.Category,
			validation.Required.Error("category is required"),
			validation.In(toAny(model.Categories)...).Error("category must be one of: "+strings.Join(model.Categories, ", ")),
		),
		validation.Field(&in.Unit,
			validation.Required.Error("unit is required"),
			validation.In(toAny(model.Units)...).Error("unit must be one of: "+strings.Join(model.Units, ", ")),
		),
		validation.Field(&in.BasePrice,
			validation.Required.Error("base price is required"),
			validation.By(positive("base price")),
		),
		validation.Field(&in.Price,
			validation.Required.Error("price is required"),
			validation.By(positive("price")),
		),
		validation.Field(&in.Stock, validation.By(nonNegative)),
		validation.Field(&in.Origin,
			validation.RuneLength(0, maxOriginLength).Error(fmt.Sprintf("origin must be at most %d characters", maxOriginLength)),
		),
		validation.Field(&in.Quality,
			validation.In(toAny(model.Qualities)...).Error("quality must be one of: "+strings.Join(model.Qualities, ", ")),
		),
		validation.Field(&in.Availability,
			validation.In(toAny(model.Availabilities)...).Error("availability must be one of: plenty (bol), limited, last (son)"),
		),
		validation.Field(&in.Description,
			validation.RuneLength(0, maxDescriptionLength).Error(fmt.Sprintf("description must be at most %d characters", maxDescriptionLength)),
		),
		validation.Field(&in.Images,
			validation.Length(0, maxImages).Error(fmt.Sprintf("at most %d images are allowed", maxImages)),
			validation.Each(is.RequestURL.Error("invalid image URL")),
		),
	)

	if errs := toImportErrors(&in, err); len(errs) > 0 {
		return model.ProductRow{}, errs, nil
	}

	return normalize(in), warningsFor(&in), nil
}

// prepare trims text and folds the enum-like columns before validation
func prepare(raw model.RawRow) model.RawRow {
	in := raw
	in.Name = strings.TrimSpace(raw.Name)
	in.Category = strings.ToLower(strings.TrimSpace(raw.Category))
	in.Unit = strings.ToLower(strings.TrimSpace(raw.Unit))
	in.Origin = strings.TrimSpace(raw.Origin)
	in.Quality = strings.ToLower(strings.TrimSpace(raw.Quality))
	in.Availability = model.NormalizeAvailability(raw.Availability)
	in.Description = strings.TrimSpace(raw.Description)

	in.Images = nil
	for _, img := range raw.Images {
		if img = strings.TrimSpace(img); img != "" {
			in.Images = append(in.Images, img)
		}
	}
	return in
}

func normalize(in model.RawRow) model.ProductRow {
	row := model.ProductRow{
		Row:          in.Row,
		Name:         in.Name,
		Category:     in.Category,
		CategoryName: model.CategoryDisplayName(in.Category),
		Unit:         in.Unit,
		BasePrice:    *in.BasePrice,
		Price:        *in.Price,
		Stock:        model.DefaultStock,
		Origin:       in.Origin,
		Quality:      in.Quality,
		Availability: in.Availability,
		Images:       in.Images,
		Variations:   in.Variations,
	}

	if in.Stock != nil {
		row.Stock = *in.Stock
	}
	if row.Origin == "" {
		row.Origin = model.DefaultOrigin
	}
	if row.Quality == "" {
		row.Quality = model.DefaultQuality
	}
	if row.Availability == "" {
		row.Availability = model.DefaultAvailability
	}
	if in.Description != "" {
		desc := in.Description
		row.Description = &desc
	}
	if row.Images == nil {
		row.Images = []string{}
	}

	return row
}

func warningsFor(in *model.RawRow) []model.ImportError {
	var warnings []model.ImportError

	if in.BasePrice.GreaterThan(warnPriceLimit) {
		warnings = append(warnings, model.ImportError{
			Row: in.Row, Field: "basePrice", Value: in.BasePrice.String(),
			Error: "base price is unusually high (above 1,000,000)",
		})
	}
	if in.Price.LessThan(*in.BasePrice) {
		warnings = append(warnings, model.ImportError{
			Row: in.Row, Field: "price", Value: in.Price.String(),
			Error: "price is lower than base price",
		})
	}
	if in.Stock != nil && *in.Stock > warnStockLimit {
		warnings = append(warnings, model.ImportError{
			Row: in.Row, Field: "stock", Value: strconv.Itoa(*in.Stock),
			Error: "stock is unusually high (above 1,000,000)",
		})
	}
	for i, img := range in.Images {
		if !strings.HasPrefix(img, "https://") {
			warnings = append(warnings, model.ImportError{
				Row: in.Row, Field: fmt.Sprintf("images[%d]", i), Value: img,
				Error: "image URL should use HTTPS",
			})
		}
	}

	return warnings
}

func toImportErrors(in *model.RawRow, err error) []model.ImportError {
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return []model.ImportError{{Row: in.Row, Field: model.FieldProcess, Error: err.Error()}}
	}

	var out []model.ImportError
	for _, field := range fieldOrder {
		fe, ok := fieldErrs[field]
		if !ok {
			continue
		}

		// Each() reports per-index errors
		var nested validation.Errors
		if field == "images" && errors.As(fe, &nested) {
			for i, img := range in.Images {
				if e, ok := nested[strconv.Itoa(i)]; ok {
					out = append(out, model.ImportError{
						Row: in.Row, Field: fmt.Sprintf("images[%d]", i), Value: img, Error: e.Error(),
					})
				}
			}
			continue
		}

		out = append(out, model.ImportError{Row: in.Row, Field: field, Value: fieldValue(in, field), Error: fe.Error()})
	}
	return out
}

func fieldValue(in *model.RawRow, field string) string {
	switch field {
	case "name":
		return in.Name
	case "category":
		return in.Category
	case "unit":
		return in.Unit
	case "basePrice":
		return decimalString(in.BasePrice)
	case "price":
		return decimalString(in.Price)
	case "stock":
		if in.Stock != nil {
			return strconv.Itoa(*in.Stock)
		}
	case "origin":
		return in.Origin
	case "quality":
		return in.Quality
	case "availability":
		return in.Availability
	case "description":
		return truncate(in.Description, 50)
	case "images":
		return strconv.Itoa(len(in.Images))
	}
	return ""
}

func positive(label string) validation.RuleFunc {
	return func(value interface{}) error {
		d, ok := value.(*decimal.Decimal)
		if !ok || d == nil {
			return nil
		}
		if !d.IsPositive() {
			return fmt.Errorf("%s must be greater than 0", label)
		}
		return nil
	}
}

func nonNegative(value interface{}) error {
	n, ok := value.(*int)
	if !ok || n == nil {
		return nil
	}
	if *n < 0 {
		return errors.New("stock cannot be negative")
	}
	return nil
}

func decimalString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func toAny(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

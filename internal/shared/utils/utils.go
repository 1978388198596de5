package utils

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// ParseLocaleDecimal reads spreadsheet numbers such as "25,50", "₺30" or "1 200".
// A decimal comma becomes a dot and every other non-numeric character is dropped.
func ParseLocaleDecimal(s string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	cleaned = nonNumeric.ReplaceAllString(cleaned, "")
	return decimal.NewFromString(cleaned)
}

// SplitList splits a comma separated cell, dropping empty items
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package model

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Categories accepted by the importer
var Categories = []string{
	"sebzeler",
	"meyveler",
	"yesillikler",
	"kokulu-bitkiler",
	"bakliyatlar",
	"zeytinyagli",
	"sut-urunleri",
	"yumurta",
	"et-urunleri",
	"balik-urunleri",
	"diger",
}

var (
	Units          = []string{"kg", "adet", "demet", "paket"}
	Qualities      = []string{"premium", "standart", "ekonomik"}
	Availabilities = []string{"plenty", "limited", "last"}
)

// Defaults applied by the normalizer
const (
	DefaultStock        = 100
	DefaultOrigin       = "Türkiye"
	DefaultQuality      = "standart"
	DefaultAvailability = "plenty"
)

// turkishAvailability maps spreadsheet values to stored ones
var turkishAvailability = map[string]string{
	"bol": "plenty",
	"son": "last",
}

// NormalizeAvailability lowercases and maps Turkish availability values
func NormalizeAvailability(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if mapped, ok := turkishAvailability[v]; ok {
		return mapped
	}
	return v
}

// CategoryDisplayName upper-cases the first letter: "sebzeler" -> "Sebzeler"
func CategoryDisplayName(category string) string {
	if category == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(category)
	return string(unicode.ToUpper(r)) + category[size:]
}

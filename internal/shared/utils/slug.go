package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength is the column width of products.slug
const MaxSlugLength = 100

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace   = regexp.MustCompile(`\s+`)
	dashes       = regexp.MustCompile(`-+`)

	// Dotless ı has no decomposition, so NFD alone would drop it
	dotlessI = strings.NewReplacer("ı", "i", "İ", "I")
)

// RemoveDiacritics strips combining marks: "Havuç Şeker" -> "Havuc Seker"
func RemoveDiacritics(input string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, dotlessI.Replace(input))
	if err != nil {
		return input
	}
	return out
}

// GenerateSlug lowercases, transliterates and hyphenates input, capped at MaxSlugLength
func GenerateSlug(input string) string {
	s := strings.ToLower(RemoveDiacritics(input))
	s = nonSlugChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(strings.TrimSpace(s), "-")
	s = dashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	return truncateSlug(s, MaxSlugLength)
}

// GenerateUniqueSlug appends a millisecond timestamp to the slugified name.
// The name part is shortened so the stamp always survives the length cap.
func GenerateUniqueSlug(name string, at time.Time) string {
	stamp := strconv.FormatInt(at.UnixMilli(), 10)
	base := truncateSlug(GenerateSlug(name), MaxSlugLength-len(stamp)-1)
	if base == "" {
		return stamp
	}
	return base + "-" + stamp
}

func truncateSlug(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) > max {
		s = s[:max]
	}
	return strings.TrimRight(s, "-")
}

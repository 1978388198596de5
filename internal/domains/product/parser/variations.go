package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"agromarket-backend/internal/domains/product/model"
	"agromarket-backend/internal/shared/utils"
)

// wordPattern matches one of words as a whole word, case-insensitively.
// RE2's \b is ASCII-only, so Turkish letters need explicit boundaries. Simple
// case folding does not pair ı with I, so dotless spellings are listed too.
func wordPattern(words ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(` + strings.Join(words, "|") + `)(?:[^\p{L}\p{N}]|$)`)
}

type variationPattern struct {
	kind    string
	order   int
	regex   *regexp.Regexp
	extract func(match []string) (string, map[string]any)
}

func foldedUpper(match []string) (string, map[string]any) {
	return strings.ToUpper(utils.RemoveDiacritics(match[1])), nil
}

var sizeUnits = map[string]string{"L": "LT", "K": "KG"}

// variationPatterns are applied in order to the text the previous ones left over
var variationPatterns = []variationPattern{
	{
		kind:  model.VariationSize,
		order: 1,
		regex: regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(\d+[,.]?\d*)\s*(LT|KG|ML|GR|L|K)(?:[^\p{L}\p{N}]|$)`),
		extract: func(match []string) (string, map[string]any) {
			value := strings.Replace(match[1], ",", ".", 1)
			unit := strings.ToUpper(match[2])
			if full, ok := sizeUnits[unit]; ok {
				unit = full
			}
			return value + " " + unit, map[string]any{"value": value, "unit": unit}
		},
	},
	{
		kind:    model.VariationType,
		order:   2,
		regex:   wordPattern("BEYAZ", "RENKLI", "RENKLİ", "SIVI", "sıvı", "TOZ", "KATI", "katı", "YUVI", "AKSKU", "YUVARIK"),
		extract: foldedUpper,
	},
	{
		kind:  model.VariationScent,
		order: 3,
		regex: wordPattern("LAVANTA", "LİMON", "LIMON", "GUL", "GÜL", "GREYFURT", "CILEK", "ÇİLEK",
			"VANILYA", "VANİLYA", "CIKOLATA", "ÇİKOLATA", "PORTAKAL", "ELMA", "NANE", "BERGAMOT",
			"LAVAS", "PORES", "KARANFIL", "MISKET", "BAHAR", "PORCEL", "LOTUS", "ORKIDE"),
		extract: foldedUpper,
	},
	{
		kind:  model.VariationPackaging,
		order: 4,
		regex: regexp.MustCompile(`\*(\d+)\s*$`),
		extract: func(match []string) (string, map[string]any) {
			count, _ := strconv.Atoi(match[1])
			return match[1], map[string]any{"count": count}
		},
	},
	{
		kind:    model.VariationMaterial,
		order:   5,
		regex:   wordPattern("CAM", "PLASTIK", "PLASTİK", "METAL", "KAGIT", "kağıt", "AHŞAP", "AHSAP", "AGAC", "AĞAÇ", "KOROZON", "KOROZYON"),
		extract: foldedUpper,
	},
	{
		kind:    model.VariationFlavor,
		order:   6,
		regex:   wordPattern("VANILLA", "STRAWBERRY", "CHOCOLATE", "BANANA", "MINT", "CARAMEL", "HAZELNUT"),
		extract: foldedUpper,
	},
}

var (
	sizeFormat      = regexp.MustCompile(`(?i)^\d+[,.]?\d*\s*(LT|KG|ML|GR)$`)
	packagingFormat = regexp.MustCompile(`^\d+$`)
)

// ExtractVariations finds structured variations in a product name and returns
// them as single-value groups together with the name stripped of the matches.
func ExtractVariations(name string) ([]model.VariationGroup, string) {
	var groups []model.VariationGroup
	remaining := name

	for _, p := range variationPatterns {
		idx := p.regex.FindStringSubmatchIndex(remaining)
		if idx == nil {
			continue
		}
		match := submatches(remaining, idx)
		value, meta := p.extract(match)
		groups = append(groups, model.VariationGroup{
			Type: p.kind,
			Values: []model.VariationValue{
				{Value: value, DisplayOrder: p.order, Metadata: meta},
			},
		})

		// Cut the token itself, not the surrounding boundary characters
		start, end := idx[2], idx[len(idx)-1]
		if p.kind == model.VariationPackaging {
			start, end = idx[0], idx[1]
		}
		remaining = remaining[:start] + " " + remaining[end:]
	}

	return groups, strings.Join(strings.Fields(remaining), " ")
}

func submatches(s string, idx []int) []string {
	out := make([]string, len(idx)/2)
	for i := range out {
		if idx[2*i] >= 0 {
			out[i] = s[idx[2*i]:idx[2*i+1]]
		}
	}
	return out
}

// ValidateVariations checks extracted groups for duplicate types and malformed values
func ValidateVariations(groups []model.VariationGroup) []string {
	var problems []string
	seen := make(map[string]bool)

	for _, g := range groups {
		if seen[g.Type] {
			problems = append(problems, fmt.Sprintf("duplicate variation type: %s", g.Type))
			continue
		}
		seen[g.Type] = true

		for _, v := range g.Values {
			if strings.TrimSpace(v.Value) == "" {
				problems = append(problems, fmt.Sprintf("empty variation value: %s", g.Type))
				continue
			}
			switch g.Type {
			case model.VariationSize:
				if !sizeFormat.MatchString(v.Value) {
					problems = append(problems, fmt.Sprintf("invalid size format: %s", v.Value))
				}
			case model.VariationPackaging:
				if !packagingFormat.MatchString(v.Value) {
					problems = append(problems, fmt.Sprintf("invalid packaging format: %s", v.Value))
				}
			}
		}
	}

	return problems
}

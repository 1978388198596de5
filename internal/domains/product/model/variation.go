package model

import (
	"time"

	"github.com/google/uuid"
)

// Variation types extracted from product names
const (
	VariationSize      = "size"
	VariationType      = "type"
	VariationScent     = "scent"
	VariationPackaging = "packaging"
	VariationMaterial  = "material"
	VariationFlavor    = "flavor"
)

// Variation is one (type, value) row of product_variations.
// Logically unique by (ProductID, VariationType, VariationValue).
type Variation struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	ProductID      uuid.UUID      `json:"product_id" db:"product_id"`
	VariationType  string         `json:"variation_type" db:"variation_type"`
	VariationValue string         `json:"variation_value" db:"variation_value"`
	DisplayOrder   int            `json:"display_order" db:"display_order"`
	Metadata       map[string]any `json:"metadata" db:"metadata"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}

// VariationValue is one value inside a group
type VariationValue struct {
	Value        string         `json:"value"`
	DisplayOrder int            `json:"display_order"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// VariationGroup holds every value a row declares for one variation type
type VariationGroup struct {
	Type   string           `json:"type"`
	Values []VariationValue `json:"values"`
}

// VariationEntry is the flattened form the variation writer consumes
type VariationEntry struct {
	Type         string
	Value        string
	DisplayOrder int
	Metadata     map[string]any
}

// FlattenVariations expands groups into entries, preserving group then value order.
// Nil metadata becomes an empty object.
func FlattenVariations(groups []VariationGroup) []VariationEntry {
	var entries []VariationEntry
	for _, g := range groups {
		for _, v := range g.Values {
			meta := v.Metadata
			if meta == nil {
				meta = map[string]any{}
			}
			entries = append(entries, VariationEntry{
				Type:         g.Type,
				Value:        v.Value,
				DisplayOrder: v.DisplayOrder,
				Metadata:     meta,
			})
		}
	}
	return entries
}

// NewVariation builds the insert payload for an entry
func (e VariationEntry) NewVariation(productID uuid.UUID) *Variation {
	return &Variation{
		ID:             uuid.New(),
		ProductID:      productID,
		VariationType:  e.Type,
		VariationValue: e.Value,
		DisplayOrder:   e.DisplayOrder,
		Metadata:       e.Metadata,
	}
}

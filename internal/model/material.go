package model

import (
	"strings"

	"github.com/google/uuid"
)

// MaterialType classifies a stocked material.
type MaterialType string

const (
	MaterialWood  MaterialType = "wood"
	MaterialMetal MaterialType = "metal"
	MaterialOther MaterialType = "other"
)

// ParseMaterialType converts user input into a MaterialType.
// Empty input defaults to wood, matching the inventory form.
func ParseMaterialType(s string) (MaterialType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "wood":
		return MaterialWood, true
	case "metal":
		return MaterialMetal, true
	case "other":
		return MaterialOther, true
	default:
		return MaterialOther, false
	}
}

// Material is a stocked material sold by the foot.
type Material struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Type             MaterialType `json:"type"`
	UnitCost         float64      `json:"unitCost"`         // currency per foot
	CurrentStock     float64      `json:"currentStock"`     // feet available
	ReorderThreshold float64      `json:"reorderThreshold"` // feet at or below which to reorder
	Supplier         string       `json:"supplier"`
}

// NewMaterial creates a Material with a generated ID.
func NewMaterial(name string, typ MaterialType, unitCost, stock, threshold float64, supplier string) Material {
	return Material{
		ID:               NewMaterialID(),
		Name:             name,
		Type:             typ,
		UnitCost:         unitCost,
		CurrentStock:     stock,
		ReorderThreshold: threshold,
		Supplier:         supplier,
	}
}

// NewMaterialID returns a short random material identifier.
func NewMaterialID() string {
	return uuid.New().String()[:8]
}

// Validate checks the fields the inventory form requires.
func (m Material) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return NewValidationError("name", "material name is required")
	}
	if strings.TrimSpace(m.Supplier) == "" {
		return NewValidationError("supplier", "supplier is required")
	}
	switch m.Type {
	case MaterialWood, MaterialMetal, MaterialOther:
	default:
		return NewValidationError("type", "unknown material type %q", m.Type)
	}
	if m.UnitCost < 0 {
		return NewValidationError("unitCost", "unit cost must not be negative")
	}
	if m.CurrentStock < 0 {
		return NewValidationError("currentStock", "stock must not be negative")
	}
	if m.ReorderThreshold < 0 {
		return NewValidationError("reorderThreshold", "reorder threshold must not be negative")
	}
	return nil
}

// DefaultCatalog returns the materials seeded into an empty store.
func DefaultCatalog() []Material {
	return []Material{
		{ID: "1", Name: "2x4 Pine", Type: MaterialWood, UnitCost: 3.50, CurrentStock: 1200, ReorderThreshold: 200, Supplier: "Lumber Supply Co."},
		{ID: "2", Name: "2x6 Pine", Type: MaterialWood, UnitCost: 5.25, CurrentStock: 800, ReorderThreshold: 150, Supplier: "Lumber Supply Co."},
		{ID: "3", Name: `1/2" Steel Rod`, Type: MaterialMetal, UnitCost: 12.00, CurrentStock: 500, ReorderThreshold: 100, Supplier: "Metal Works Inc."},
		{ID: "4", Name: `3/4" Steel Rod`, Type: MaterialMetal, UnitCost: 18.50, CurrentStock: 300, ReorderThreshold: 75, Supplier: "Metal Works Inc."},
	}
}

// FindMaterial returns a pointer to the material with the given ID, or nil.
func FindMaterial(materials []Material, id string) *Material {
	for i := range materials {
		if materials[i].ID == id {
			return &materials[i]
		}
	}
	return nil
}

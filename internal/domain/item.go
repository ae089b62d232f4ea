package domain

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category classifies an item for display grouping
type Category string

const (
	CategoryFurniture   Category = "furniture"
	CategoryElectronics Category = "electronics"
	CategoryAppliances  Category = "appliances"
	CategoryBoxes       Category = "boxes"
	CategoryFragile     Category = "fragile"
	CategoryExercise    Category = "exercise"
	CategoryGarden      Category = "garden"
	CategoryOther       Category = "other"
)

// IsValid checks if the category is one of the known values
func (c Category) IsValid() bool {
	switch c {
	case CategoryFurniture, CategoryElectronics, CategoryAppliances,
		CategoryBoxes, CategoryFragile, CategoryExercise, CategoryGarden, CategoryOther:
		return true
	default:
		return false
	}
}

// NormalizeCategory maps unknown category values to CategoryOther
func NormalizeCategory(c Category) Category {
	if c.IsValid() {
		return c
	}
	return CategoryOther
}

// Item is a physical object registered at a pickup stop.
// Weight, dimensions and value are free-form magnitude strings; units are
// whatever the user typed, only the leading numeric content is interpreted.
type Item struct {
	ID                  string   `json:"id" bson:"id"`
	Name                string   `json:"name" bson:"name"`
	Category            Category `json:"category" bson:"category"`
	Quantity            int      `json:"quantity" bson:"quantity"`
	Weight              string   `json:"weight,omitempty" bson:"weight,omitempty"`
	Dimensions          string   `json:"dimensions,omitempty" bson:"dimensions,omitempty"`
	Value               string   `json:"value,omitempty" bson:"value,omitempty"`
	Fragile             bool     `json:"fragile" bson:"fragile"`
	NeedsDisassembly    bool     `json:"needs_disassembly" bson:"needsDisassembly"`
	InsuranceRequired   bool     `json:"insurance_required" bson:"insuranceRequired"`
	Photo               string   `json:"photo,omitempty" bson:"photo,omitempty"`
	Notes               string   `json:"notes,omitempty" bson:"notes,omitempty"`
	SpecialInstructions string   `json:"special_instructions,omitempty" bson:"specialInstructions,omitempty"`
}

// Normalize assigns an id if absent, defaults quantity to 1 and maps
// unknown categories to the fallback
func (i *Item) Normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Quantity < 1 {
		i.Quantity = 1
	}
	i.Category = NormalizeCategory(i.Category)
}

// EstimatedWeight returns the item's weight magnitude times quantity.
// Unparseable weights count as zero.
func (i *Item) EstimatedWeight() decimal.Decimal {
	return Magnitude(i.Weight).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// DeclaredValue returns the item's value magnitude times quantity
func (i *Item) DeclaredValue() decimal.Decimal {
	return Magnitude(i.Value).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemPatch is a shallow merge applied to an existing item. Nil fields are
// left untouched.
type ItemPatch struct {
	Name                *string   `json:"name,omitempty"`
	Category            *Category `json:"category,omitempty"`
	Quantity            *int      `json:"quantity,omitempty"`
	Weight              *string   `json:"weight,omitempty"`
	Dimensions          *string   `json:"dimensions,omitempty"`
	Value               *string   `json:"value,omitempty"`
	Fragile             *bool     `json:"fragile,omitempty"`
	NeedsDisassembly    *bool     `json:"needs_disassembly,omitempty"`
	InsuranceRequired   *bool     `json:"insurance_required,omitempty"`
	Photo               *string   `json:"photo,omitempty"`
	Notes               *string   `json:"notes,omitempty"`
	SpecialInstructions *string   `json:"special_instructions,omitempty"`
}

// Apply merges the patch into the item
func (p ItemPatch) Apply(item *Item) error {
	if p.Quantity != nil && *p.Quantity < 1 {
		return ErrInvalidQuantity
	}

	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Category != nil {
		item.Category = NormalizeCategory(*p.Category)
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.Weight != nil {
		item.Weight = *p.Weight
	}
	if p.Dimensions != nil {
		item.Dimensions = *p.Dimensions
	}
	if p.Value != nil {
		item.Value = *p.Value
	}
	if p.Fragile != nil {
		item.Fragile = *p.Fragile
	}
	if p.NeedsDisassembly != nil {
		item.NeedsDisassembly = *p.NeedsDisassembly
	}
	if p.InsuranceRequired != nil {
		item.InsuranceRequired = *p.InsuranceRequired
	}
	if p.Photo != nil {
		item.Photo = *p.Photo
	}
	if p.Notes != nil {
		item.Notes = *p.Notes
	}
	if p.SpecialInstructions != nil {
		item.SpecialInstructions = *p.SpecialInstructions
	}

	return nil
}

// Magnitude extracts the leading numeric content of a free-form magnitude
// string ("25kg" -> 25, "about 3" -> 0). Unparseable input yields zero.
func Magnitude(s string) decimal.Decimal {
	s = strings.TrimSpace(s)

	end := 0
	for end < len(s) {
		ch := s[end]
		if (ch >= '0' && ch <= '9') || ch == '.' || (ch == '-' && end == 0) {
			end++
			continue
		}
		break
	}

	if end == 0 {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s[:end])
	if err != nil {
		return decimal.Zero
	}
	return d
}

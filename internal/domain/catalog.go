package domain

import "github.com/google/uuid"

// CatalogPreset is a common household item the wizard offers for one-tap
// adding to a pickup stop
type CatalogPreset struct {
	Key              string   `json:"key"`
	Name             string   `json:"name"`
	Category         Category `json:"category"`
	Fragile          bool     `json:"fragile"`
	NeedsDisassembly bool     `json:"needs_disassembly"`
}

var catalogPresets = []CatalogPreset{
	{Key: "sofa", Name: "Sofa", Category: CategoryFurniture, NeedsDisassembly: false},
	{Key: "armchair", Name: "Armchair", Category: CategoryFurniture},
	{Key: "double-bed", Name: "Double Bed", Category: CategoryFurniture, NeedsDisassembly: true},
	{Key: "single-bed", Name: "Single Bed", Category: CategoryFurniture, NeedsDisassembly: true},
	{Key: "wardrobe", Name: "Wardrobe", Category: CategoryFurniture, NeedsDisassembly: true},
	{Key: "dining-table", Name: "Dining Table", Category: CategoryFurniture, NeedsDisassembly: true},
	{Key: "desk", Name: "Desk", Category: CategoryFurniture},
	{Key: "bookshelf", Name: "Bookshelf", Category: CategoryFurniture},
	{Key: "tv", Name: "Television", Category: CategoryElectronics, Fragile: true},
	{Key: "computer", Name: "Computer / Monitor", Category: CategoryElectronics, Fragile: true},
	{Key: "stereo", Name: "Stereo System", Category: CategoryElectronics, Fragile: true},
	{Key: "refrigerator", Name: "Refrigerator", Category: CategoryAppliances},
	{Key: "washing-machine", Name: "Washing Machine", Category: CategoryAppliances},
	{Key: "dishwasher", Name: "Dishwasher", Category: CategoryAppliances},
	{Key: "oven", Name: "Oven", Category: CategoryAppliances},
	{Key: "small-box", Name: "Small Box", Category: CategoryBoxes},
	{Key: "medium-box", Name: "Medium Box", Category: CategoryBoxes},
	{Key: "large-box", Name: "Large Box", Category: CategoryBoxes},
	{Key: "mirror", Name: "Mirror", Category: CategoryFragile, Fragile: true},
	{Key: "artwork", Name: "Artwork / Picture", Category: CategoryFragile, Fragile: true},
	{Key: "glassware", Name: "Glassware Box", Category: CategoryFragile, Fragile: true},
	{Key: "piano", Name: "Piano", Category: CategoryFragile, Fragile: true},
	{Key: "treadmill", Name: "Treadmill", Category: CategoryExercise, NeedsDisassembly: true},
	{Key: "exercise-bike", Name: "Exercise Bike", Category: CategoryExercise},
	{Key: "weights", Name: "Weights Set", Category: CategoryExercise},
	{Key: "lawn-mower", Name: "Lawn Mower", Category: CategoryGarden},
	{Key: "bbq", Name: "BBQ / Grill", Category: CategoryGarden},
	{Key: "garden-furniture", Name: "Garden Furniture Set", Category: CategoryGarden},
	{Key: "bicycle", Name: "Bicycle", Category: CategoryOther},
	{Key: "suitcase", Name: "Suitcase", Category: CategoryOther},
}

var catalogByKey = func() map[string]CatalogPreset {
	m := make(map[string]CatalogPreset, len(catalogPresets))
	for _, p := range catalogPresets {
		m[p.Key] = p
	}
	return m
}()

// Catalog returns the full item preset catalog
func Catalog() []CatalogPreset {
	out := make([]CatalogPreset, len(catalogPresets))
	copy(out, catalogPresets)
	return out
}

// PresetByKey looks up a catalog preset
func PresetByKey(key string) (CatalogPreset, bool) {
	p, ok := catalogByKey[key]
	return p, ok
}

// NewItem creates a fresh item from the preset
func (p CatalogPreset) NewItem() Item {
	return Item{
		ID:               uuid.NewString(),
		Name:             p.Name,
		Category:         p.Category,
		Quantity:         1,
		Fragile:          p.Fragile,
		NeedsDisassembly: p.NeedsDisassembly,
	}
}

package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Category is one of the fixed grocery sections. The zero value is not a
// valid category; decoding always resolves to a declared tag.
type Category string

const (
	CategoryFruitAndVeg    Category = "fruit-and-veg"
	CategoryDairyAndEggs   Category = "dairy-and-eggs"
	CategoryMeatAndSeafood Category = "meat-and-seafood"
	CategoryBakeryAndBread Category = "bakery-and-bread"
	CategoryPantry         Category = "pantry"
	CategorySnacks         Category = "snacks"
	CategoryHousehold      Category = "household"
	CategoryOther          Category = "other"
)

// DefaultCategory is preselected in the add flow.
const DefaultCategory = CategoryFruitAndVeg

type categoryInfo struct {
	label string
	color string
}

// Declaration order is display order.
var categoryOrder = []Category{
	CategoryFruitAndVeg,
	CategoryDairyAndEggs,
	CategoryMeatAndSeafood,
	CategoryBakeryAndBread,
	CategoryPantry,
	CategorySnacks,
	CategoryHousehold,
	CategoryOther,
}

var categoryInfos = map[Category]categoryInfo{
	CategoryFruitAndVeg:    {label: "Fruit & Veg", color: "#34C759"},
	CategoryDairyAndEggs:   {label: "Dairy & Eggs", color: "#007AFF"},
	CategoryMeatAndSeafood: {label: "Meat & Seafood", color: "#FF3B30"},
	CategoryBakeryAndBread: {label: "Bakery & Bread", color: "#FF9500"},
	CategoryPantry:         {label: "Pantry", color: "#A2845E"},
	CategorySnacks:         {label: "Snacks", color: "#FF2D55"},
	CategoryHousehold:      {label: "Household", color: "#30B0C7"},
	CategoryOther:          {label: "Other", color: "#8E8E93"},
}

// Categories returns every category in display order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// ParseCategory decodes a stored or user-supplied value. Both the tag and the
// display label are accepted, case-insensitively. Anything else is Other.
func ParseCategory(raw string) Category {
	c, ok := lookupCategory(raw)
	if !ok {
		return CategoryOther
	}
	return c
}

// IsKnownCategory reports whether raw names a declared category.
func IsKnownCategory(raw string) bool {
	_, ok := lookupCategory(raw)
	return ok
}

func lookupCategory(raw string) (Category, bool) {
	s := strings.TrimSpace(raw)
	for _, c := range categoryOrder {
		if strings.EqualFold(s, string(c)) || strings.EqualFold(s, categoryInfos[c].label) {
			return c, true
		}
	}
	return "", false
}

// Label is the human-readable section title.
func (c Category) Label() string {
	return categoryInfos[ParseCategory(string(c))].label
}

// Color is the section tint as a hex RGB string.
func (c Category) Color() string {
	return categoryInfos[ParseCategory(string(c))].color
}

// Index is the position of c in display order.
func (c Category) Index() int {
	c = ParseCategory(string(c))
	for i, o := range categoryOrder {
		if o == c {
			return i
		}
	}
	return len(categoryOrder) - 1
}

func (c Category) String() string {
	return string(c)
}

func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(ParseCategory(string(c))))
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("category: %w", err)
	}
	if strings.TrimSpace(s) == "" {
		*c = ""
		return nil
	}
	*c = ParseCategory(s)
	return nil
}

func (c *Category) Scan(src any) error {
	switch v := src.(type) {
	case string:
		*c = ParseCategory(v)
	case []byte:
		*c = ParseCategory(string(v))
	case nil:
		*c = CategoryOther
	default:
		return fmt.Errorf("scan category: unsupported type %T", src)
	}
	return nil
}

func (c Category) Value() (driver.Value, error) {
	return string(ParseCategory(string(c))), nil
}

// CategoryMeta is the wire form of a category with its display metadata.
type CategoryMeta struct {
	ID    Category `json:"id"`
	Label string   `json:"label"`
	Color string   `json:"color"`
}

func CategoryCatalog() []CategoryMeta {
	out := make([]CategoryMeta, 0, len(categoryOrder))
	for _, c := range categoryOrder {
		out = append(out, CategoryMeta{ID: c, Label: c.Label(), Color: c.Color()})
	}
	return out
}

package domain

import (
	"encoding/json"
	"time"
)

// TimestampLayout renders timestamps in UTC with exactly three fractional digits
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Category is the closed set of item categories
type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryClothing    Category = "clothing"
	CategoryBooks       Category = "books"
	CategoryOther       Category = "other"
)

// Categories lists every valid category
var Categories = []Category{CategoryElectronics, CategoryClothing, CategoryBooks, CategoryOther}

// Valid reports whether c belongs to the category set
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Item represents a record in the item catalog
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Category    *Category `json:"category,omitempty"`
	Stock       *int      `json:"stock,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MarshalJSON writes timestamps with fixed millisecond precision
func (i Item) MarshalJSON() ([]byte, error) {
	type item Item
	return json.Marshal(struct {
		item
		CreatedAt string `json:"createdAt"`
		UpdatedAt string `json:"updatedAt"`
	}{
		item:      item(i),
		CreatedAt: i.CreatedAt.UTC().Format(TimestampLayout),
		UpdatedAt: i.UpdatedAt.UTC().Format(TimestampLayout),
	})
}

// CreateItemInput holds the caller supplied fields of a new item
type CreateItemInput struct {
	Name        string
	Description *string
	Price       float64
	Category    *Category
	Stock       *int
}

// NewItem builds an item from input with the given id and creation time
func NewItem(id string, input CreateItemInput, now time.Time) *Item {
	return &Item{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Stock:       input.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Apply returns a copy of the item with the patch fields replaced and
// UpdatedAt set to now. The receiver is left untouched.
func (i Item) Apply(patch ItemPatch, now time.Time) Item {
	next := i
	for _, f := range patch.Fields() {
		switch f.Name {
		case FieldName:
			next.Name = *patch.Name
		case FieldDescription:
			v := *patch.Description
			next.Description = &v
		case FieldPrice:
			next.Price = *patch.Price
		case FieldCategory:
			v := *patch.Category
			next.Category = &v
		case FieldStock:
			v := *patch.Stock
			next.Stock = &v
		}
	}
	next.UpdatedAt = now
	return next
}

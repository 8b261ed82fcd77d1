package model

import "time"

// Category classifies a catalog product. Values match the labels stored in
// existing product documents.
type Category string

// Product categories.
const (
	CategoryGrains  Category = "graos"
	CategoryPlanted Category = "plantada"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryGrains, CategoryPlanted}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c == CategoryGrains || c == CategoryPlanted
}

// Label returns the human-readable category name.
func (c Category) Label() string {
	switch c {
	case CategoryGrains:
		return "Grãos"
	case CategoryPlanted:
		return "Lavoura"
	default:
		return string(c)
	}
}

// Product is one catalog entry.
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	ImageURL    *string   `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Image returns the image URL or "" when none has been uploaded yet.
func (p Product) Image() string {
	if p.ImageURL == nil {
		return ""
	}
	return *p.ImageURL
}

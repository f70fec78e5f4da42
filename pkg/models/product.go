package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Category values accepted for products. Stored in the "type" field.
const (
	CategoryPanties     = "Panties"
	CategoryShirts      = "Shirts"
	CategoryJackets     = "Jackets"
	CategoryUnderwear   = "Underwear"
	CategoryAccessories = "Accessories"
)

var categories = map[string]bool{
	CategoryPanties:     true,
	CategoryShirts:      true,
	CategoryJackets:     true,
	CategoryUnderwear:   true,
	CategoryAccessories: true,
}

func ValidCategory(c string) bool {
	return categories[c]
}

// Product is the normalized view of a catalog record. Legacy documents keep
// their stock count in one of three field names, as a number or a numeric
// string; the repository maps that onto Stock and remembers the original
// representation in StockField/StockAsString so writes don't change the
// record's schema.
type Product struct {
	ID          string    `json:"id"`
	Category    string    `json:"type"`
	Price       string    `json:"price"`
	Description string    `json:"description"`
	Size        string    `json:"size"`
	Stock       int       `json:"qty"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	StockField    string `json:"-"`
	StockAsString bool   `json:"-"`
}

// NewProduct carries the fields of an admin add-action. Qty is kept as a
// numeric string, which is what the dashboard has always stored.
type NewProduct struct {
	Category    string
	Price       string
	Description string
	Size        string
	Qty         string
	Images      []string
}

// StockChange records one applied inventory decrement so it can be
// compensated if a later line of the same order fails.
type StockChange struct {
	ProductID string
	Previous  int
	NewStock  int
	Deleted   bool
	// Snapshot holds the full document when the decrement removed it.
	Snapshot bson.M
}

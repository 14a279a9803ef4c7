package domain

import "time"

// Product is one purchasable catalog item. Instances are immutable once
// fetched; the catalog is replaced wholesale on every load.
type Product struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    *string   `json:"imageURL"`
	CreatedAt   time.Time `json:"createdAt"`
	CreatedBy   int       `json:"createdBy"`
}

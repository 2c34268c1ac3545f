package model

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog item. Name is unique across the catalog; Stock never
// goes below zero through any committed operation.
type Product struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TransactionType classifies how a transaction moves stock.
type TransactionType string

const (
	TransactionTypeSale     TransactionType = "SALE"
	TransactionTypePurchase TransactionType = "PURCHASE"
)

// Validate reports whether the type is one of the known values.
func (t TransactionType) Validate() error {
	switch t {
	case TransactionTypeSale, TransactionTypePurchase:
		return nil
	default:
		return fmt.Errorf("unknown transaction type: %q", t)
	}
}

// Transaction is a ledger entry tied to one product. The product reference is
// weak: deleting the product leaves the entry behind with a dangling id.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	Quantity    int             `json:"quantity"`
	TotalPrice  float64         `json:"total_price"`
	Type        TransactionType `json:"transaction_type"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

package receipt

import (
	"errors"
)

// ErrNotFound is returned when a receipt id does not exist for the
// requesting user.
var ErrNotFound = errors.New("receipt not found")

// PurchaseType classifies where a receipt came from.
type PurchaseType string

const (
	PurchaseRestaurant PurchaseType = "Restaurant"
	PurchaseRetail     PurchaseType = "Retail"
	PurchaseOther      PurchaseType = "Other"
)

// PurchaseTypes lists the valid purchase types in display order.
func PurchaseTypes() []PurchaseType {
	return []PurchaseType{PurchaseRestaurant, PurchaseRetail, PurchaseOther}
}

// ParsePurchaseType maps free-form extraction output onto a valid
// purchase type. Anything unrecognized becomes Retail.
func ParsePurchaseType(s string) PurchaseType {
	switch PurchaseType(s) {
	case PurchaseRestaurant, PurchaseRetail, PurchaseOther:
		return PurchaseType(s)
	}

	return PurchaseRetail
}

// Receipt is a persisted receipt as the backend returns it.
type Receipt struct {
	ID                string       `json:"id"`
	Type              PurchaseType `json:"type_of_purchase"`
	EstablishmentName string       `json:"establishment_name"`
	Date              string       `json:"date"`
	Total             Amount       `json:"total"`
	Items             []LineItem   `json:"items"`
	InWallet          bool         `json:"in_wallet,omitempty"`
	CreatedAt         string       `json:"created_at,omitempty"`
}

// LineItem is a single purchased item on a receipt.
type LineItem struct {
	Name     string   `json:"name"`
	Price    Amount   `json:"price"`
	Quantity Quantity `json:"quantity"`
}

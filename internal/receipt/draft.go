package receipt

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// RawExtraction is the uncorrected shape the extraction endpoint
// returns. Field names and value types follow whatever the vision
// model emitted, so numeric values stay raw until Normalize.
type RawExtraction struct {
	TypeOfPurchase    string              `json:"type_of_purchase,omitempty"`
	EstablishmentName string              `json:"establishment_name,omitempty"`
	Date              string              `json:"date,omitempty"`
	Total             json.RawMessage     `json:"total,omitempty"`
	Items             []RawExtractionItem `json:"items,omitempty"`
}

// RawExtractionItem tolerates both the item_name and name spellings
// the model alternates between.
type RawExtractionItem struct {
	ItemName string          `json:"item_name,omitempty"`
	Name     string          `json:"name,omitempty"`
	Price    json.RawMessage `json:"price,omitempty"`
	Quantity json.RawMessage `json:"quantity,omitempty"`
}

// Draft is a receipt being assembled in the editor. Numeric fields
// stay raw strings so partially typed values survive editing; coercion
// happens in BuildSavePayload.
type Draft struct {
	Type              PurchaseType
	EstablishmentName string
	Date              string
	Total             string
	Items             []DraftItem
}

// DraftItem is one editable item row.
type DraftItem struct {
	Name     string
	Price    string
	Quantity string
}

// NewDraft returns an empty draft for manual entry.
func NewDraft() Draft {
	return Draft{Type: PurchaseRetail, Items: []DraftItem{}}
}

// Normalize corrects an extraction result into an editable draft:
// unknown purchase types become Retail, item names fall back from
// item_name to name, missing prices become "0" and missing quantities
// "1". The extraction model omits all of these often enough that every
// default gets exercised in practice.
func Normalize(raw RawExtraction) Draft {
	d := Draft{
		Type:              ParsePurchaseType(strings.TrimSpace(raw.TypeOfPurchase)),
		EstablishmentName: strings.TrimSpace(raw.EstablishmentName),
		Date:              strings.TrimSpace(raw.Date),
		Total:             rawText(raw.Total),
		Items:             make([]DraftItem, 0, len(raw.Items)),
	}

	for _, it := range raw.Items {
		name := strings.TrimSpace(it.ItemName)
		if name == "" {
			name = strings.TrimSpace(it.Name)
		}

		price := rawText(it.Price)
		if price == "" {
			price = "0"
		}

		qty := rawText(it.Quantity)
		if qty == "" {
			qty = "1"
		}

		d.Items = append(d.Items, DraftItem{Name: name, Price: price, Quantity: qty})
	}

	return d
}

// SavePayload is the normalized persistence form sent to the backend.
type SavePayload struct {
	Type              PurchaseType `json:"type_of_purchase"`
	EstablishmentName string       `json:"establishment_name"`
	Date              string       `json:"date"`
	Total             Amount       `json:"total"`
	Items             []LineItem   `json:"items"`
}

// BuildSavePayload coerces a draft into the persistence shape: totals
// and prices become decimals (blank or malformed text is 0, negative
// prices clamp to 0), quantities become whole numbers of at least 1,
// and unnamed items become "Unknown item".
func BuildSavePayload(d Draft) SavePayload {
	p := SavePayload{
		Type:              d.Type,
		EstablishmentName: strings.TrimSpace(d.EstablishmentName),
		Date:              strings.TrimSpace(d.Date),
		Total:             Amount{Decimal: parseAmount(d.Total)},
		Items:             make([]LineItem, 0, len(d.Items)),
	}

	for _, it := range d.Items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			name = "Unknown item"
		}

		p.Items = append(p.Items, LineItem{
			Name:     name,
			Price:    Amount{Decimal: itemPrice(it)},
			Quantity: Quantity(itemQuantity(it)),
		})
	}

	return p
}

// RunningTotal is the live sum of price times quantity over the
// draft's items, using the same coercion as BuildSavePayload. It is
// independent of the editable Total field; the two legitimately
// diverge while the user edits.
func RunningTotal(d Draft) decimal.Decimal {
	sum := decimal.Decimal{}
	for _, it := range d.Items {
		qty := decimal.NewFromInt(int64(itemQuantity(it)))
		sum = sum.Add(itemPrice(it).Mul(qty))
	}

	return sum
}

func itemPrice(it DraftItem) decimal.Decimal {
	price := parseAmount(it.Price)
	if price.IsNegative() {
		return decimal.Decimal{}
	}

	return price
}

func itemQuantity(it DraftItem) int {
	qty := parseQuantity(it.Quantity)
	if qty < 1 {
		return 1
	}

	return qty
}

// rawText renders a raw JSON scalar as editable text: strings unquote,
// numbers keep their literal form, null and absence become empty.
func rawText(m json.RawMessage) string {
	raw := strings.TrimSpace(string(m))
	if raw == "" || raw == "null" {
		return ""
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(m, &s); err == nil {
			return strings.TrimSpace(s)
		}
	}

	return raw
}

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/shopspring/decimal"

	"github.com/raseedhq/raseed/internal/money"
	"github.com/raseedhq/raseed/internal/receipt"
)

// LocalExtractor fabricates extraction results from a fixed sample
// set, keyed by a hash of the image bytes so the same upload always
// extracts identically. The samples keep the rough edges of real model
// output: numbers as strings, item_name next to name, missing
// quantities and types.
type LocalExtractor struct{}

func (LocalExtractor) Extract(_ context.Context, _ string, image []byte) (receipt.RawExtraction, error) {
	if len(image) == 0 {
		return receipt.RawExtraction{}, errors.New("empty image")
	}

	h := fnv.New64a()
	h.Write(image)

	samples := extractionSamples()

	return samples[h.Sum64()%uint64(len(samples))], nil
}

func extractionSamples() []receipt.RawExtraction {
	return []receipt.RawExtraction{
		{
			TypeOfPurchase:    "Restaurant",
			EstablishmentName: "Saravana Bhavan",
			Date:              "2025-07-14",
			Total:             json.RawMessage(`"412.50"`),
			Items: []receipt.RawExtractionItem{
				{ItemName: "Masala Dosa", Price: json.RawMessage(`"95"`), Quantity: json.RawMessage(`2`)},
				{ItemName: "Filter Coffee", Price: json.RawMessage(`40.5`)},
				{Name: "Mineral Water", Price: json.RawMessage(`"22"`), Quantity: json.RawMessage(`"1"`)},
			},
		},
		{
			TypeOfPurchase:    "Retail",
			EstablishmentName: "DMart Hyderabad",
			Date:              "2025-08-02",
			Total:             json.RawMessage(`1240`),
			Items: []receipt.RawExtractionItem{
				{Name: "Basmati Rice 5kg", Price: json.RawMessage(`640`), Quantity: json.RawMessage(`1`)},
				{Name: "Parle-G Family Pack", Price: json.RawMessage(`"120"`), Quantity: json.RawMessage(`2`)},
				{ItemName: "Toor Dal 1kg", Price: json.RawMessage(`180`)},
			},
		},
		{
			EstablishmentName: "City Chemist",
			Date:              "2025-08-19",
			Total:             json.RawMessage(`"268"`),
			Items: []receipt.RawExtractionItem{
				{ItemName: "Paracetamol 650", Price: json.RawMessage(`"35"`), Quantity: json.RawMessage(`2`)},
				{ItemName: "Vitamin C", Price: json.RawMessage(`198`)},
			},
		},
	}
}

// LocalAssistant answers from the stored receipts alone: counts,
// totals and the most recent purchase.
type LocalAssistant struct{}

func (LocalAssistant) Reply(_ context.Context, prompt string, receipts []receipt.Receipt) (string, error) {
	if len(receipts) == 0 {
		return "You have no receipts saved yet. Scan one and ask me again.", nil
	}

	total := decimal.Decimal{}
	for _, r := range receipts {
		total = total.Add(r.Total.Decimal)
	}

	// The list arrives newest first.
	latest := receipts[0]

	return fmt.Sprintf(
		"You have %d receipts totalling %s. The most recent is from %s on %s for %s. You asked: %q.",
		len(receipts),
		money.Format(total),
		latest.EstablishmentName,
		latest.Date,
		money.Format(latest.Total.Decimal),
		prompt,
	), nil
}

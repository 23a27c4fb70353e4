package receipt

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a decimal money value that survives the loose JSON the
// extraction pipeline produces: numbers, numeric strings, empty
// strings and nulls all decode, with anything unparseable coercing to
// zero. It marshals back out as a bare number.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps a decimal as an Amount.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// AmountFromString parses s leniently; blank or malformed input yields
// zero.
func AmountFromString(s string) Amount {
	return Amount{Decimal: parseAmount(s)}
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "" || raw == "null" {
		a.Decimal = decimal.Decimal{}
		return nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			a.Decimal = decimal.Decimal{}
			return nil
		}

		raw = s
	}

	a.Decimal = parseAmount(raw)

	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// Quantity is an item count that decodes from numbers, numeric strings
// and nulls. Fractional values truncate and anything unparseable
// coerces to zero; the save path floors quantities at one.
type Quantity int

func (q *Quantity) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "" || raw == "null" {
		*q = 0
		return nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*q = 0
			return nil
		}

		raw = s
	}

	*q = Quantity(parseQuantity(raw))

	return nil
}

// parseAmount converts free-form numeric text into a decimal; blank or
// malformed input becomes zero.
func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}
	}

	return d
}

// parseQuantity converts free-form numeric text into a whole count,
// truncating fractions; malformed input becomes zero.
func parseQuantity(s string) int {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0
	}

	return int(d.IntPart())
}

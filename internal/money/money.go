// Package money formats rupee amounts for display.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.MustParse("en-IN"))

// Format renders an amount as rupees with Indian digit grouping, e.g.
// ₹1,23,456.50.
func Format(d decimal.Decimal) string {
	f, _ := d.Float64()

	return printer.Sprintf("₹%v", number.Decimal(f, number.Scale(2)))
}

package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{name: "small amount", in: "450.5", want: "₹450.50"},
		{name: "thousands", in: "1234.5", want: "₹1,234.50"},
		{name: "lakh grouping", in: "123456.5", want: "₹1,23,456.50"},
		{name: "zero", in: "0", want: "₹0.00"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := decimal.NewFromString(tc.in)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, Format(d))
		})
	}
}

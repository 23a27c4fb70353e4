package receipt

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountUnmarshal(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{name: "number", in: `3.5`, want: "3.5"},
		{name: "numeric string", in: `"3.5"`, want: "3.5"},
		{name: "integer string", in: `"640"`, want: "640"},
		{name: "null", in: `null`, want: "0"},
		{name: "empty string", in: `""`, want: "0"},
		{name: "garbage string", in: `"abc"`, want: "0"},
		{name: "padded string", in: `" 12.25 "`, want: "12.25"},
		{name: "negative number", in: `-4.2`, want: "-4.2"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var a Amount
			require.NoError(t, json.Unmarshal([]byte(tc.in), &a))
			assert.Equal(t, tc.want, a.String())
		})
	}
}

func TestAmountMarshal(t *testing.T) {
	a := AmountFromString("412.50")

	body, err := json.Marshal(a)
	require.NoError(t, err)

	assert.Equal(t, "412.5", string(body), "amounts marshal as bare numbers")
}

func TestAmountInStruct(t *testing.T) {
	// Amounts arrive nested in documents, where a failed field decode
	// would abort the whole object. It must never fail.
	var doc struct {
		Total Amount `json:"total"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"total": {"oops": true}}`), &doc))
	assert.Equal(t, "0", doc.Total.String())
}

func TestQuantityUnmarshal(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want Quantity
	}{
		{name: "number", in: `2`, want: 2},
		{name: "numeric string", in: `"2"`, want: 2},
		{name: "fractional truncates", in: `2.9`, want: 2},
		{name: "null", in: `null`, want: 0},
		{name: "empty string", in: `""`, want: 0},
		{name: "garbage", in: `"many"`, want: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var q Quantity
			require.NoError(t, json.Unmarshal([]byte(tc.in), &q))
			assert.Equal(t, tc.want, q)
		})
	}
}

func TestAmountFromString(t *testing.T) {
	assert.Equal(t, "99.9", AmountFromString("99.9").String())
	assert.Equal(t, "0", AmountFromString("").String())
	assert.Equal(t, "0", AmountFromString("n/a").String())
}

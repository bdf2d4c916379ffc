package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		raw    string
		amount float64
		code   string
	}{
		{"₹ 5,432", 5432, "INR"},
		{"$120", 120, "USD"},
		{"INR 4,999", 4999, "INR"},
		{"100", 100, ""},
		{"€1.234,50", 1234.5, "EUR"},
		{"Rp 1.250.000", 1250000, "IDR"},
		{"£89.99", 89.99, "GBP"},
		{"12,345,678 INR", 12345678, "INR"},
		{"C$ 120", 120, "CAD"},
		{"HK$1,050", 1050, "HKD"},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			amount, code, err := Parse(tc.raw)
			require.NoError(t, err)
			assert.InDelta(t, tc.amount, amount, 0.001)
			assert.Equal(t, tc.code, code)
		})
	}
}

func TestParseDetectsSameCurrencyEveryTime(t *testing.T) {
	for i := 0; i < 50; i++ {
		_, code, err := Parse("₹ 5,432 ($65)")
		require.NoError(t, err)
		require.Equal(t, "INR", code)
	}
}

func TestParseWithoutDigits(t *testing.T) {
	_, _, err := Parse("Price unavailable")
	assert.ErrorIs(t, err, ErrNoAmount)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "₹ 5,432", Format(5432, "INR"))
	assert.Equal(t, "$ 120", Format(120, "USD"))
	assert.Equal(t, "Rp 1.250.000", Format(1250000, "IDR"))
	assert.Equal(t, "CHF 1,000", Format(1000, "CHF"))
	assert.Equal(t, "100", Format(100, ""))
	assert.Equal(t, "-$ 1,500", Format(-1500, "USD"))
}

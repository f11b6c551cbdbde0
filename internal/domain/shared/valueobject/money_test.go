package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCurrency(t *testing.T) {
	t.Run("defaults to EUR", func(t *testing.T) {
		c, err := NormalizeCurrency("  ")
		require.NoError(t, err)
		assert.Equal(t, DefaultCurrency, c)
	})

	t.Run("upper-cases valid code", func(t *testing.T) {
		c, err := NormalizeCurrency("chf")
		require.NoError(t, err)
		assert.Equal(t, Currency("CHF"), c)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := NormalizeCurrency("euro")
		assert.Error(t, err)
	})
}

func TestRoundCents(t *testing.T) {
	assert.Equal(t, "99.99", RoundCents(decimal.RequireFromString("99.990")).StringFixed(2))
	assert.Equal(t, "20.00", RoundCents(decimal.RequireFromString("19.998")).StringFixed(2))
	assert.Equal(t, "0.13", RoundCents(decimal.RequireFromString("0.125")).StringFixed(2))
}

func TestSumCents(t *testing.T) {
	got := SumCents(decimal.RequireFromString("0.10"), decimal.RequireFromString("0.20"), decimal.RequireFromString("0.004"))
	assert.Equal(t, "0.30", got.StringFixed(2))
}

func TestParseAmount(t *testing.T) {
	cases := map[string]string{
		"1.234,56":   "1234.56",
		"1,234.56":   "1234.56",
		"12,50":      "12.5",
		"€ 7.303,08": "7303.08",
		"1.234.567":  "1234567",
		"1,234,567":  "1234567",
		"42":         "42",
		"19.99 EUR":  "19.99",
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			got, err := ParseAmount(in)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(want)), "got %s", got)
		})
	}

	t.Run("empty", func(t *testing.T) {
		_, err := ParseAmount("€")
		assert.Error(t, err)
	})

	t.Run("not a number", func(t *testing.T) {
		_, err := ParseAmount("abc")
		assert.Error(t, err)
	})
}

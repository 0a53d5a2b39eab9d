package randompkg

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	s := String(10)
	require.Len(t, s, 10)
	require.Equal(t, strings.ToLower(s), s)
}

func TestSecret(t *testing.T) {
	first := Secret()
	second := Secret()

	require.Len(t, first, SecretLen)
	require.Len(t, second, SecretLen)
	require.NotEqual(t, first, second)

	for _, c := range first {
		require.Contains(t, alphanumeric, string(c))
	}
}

func TestFloatBetween(t *testing.T) {
	for i := 0; i < 100; i++ {
		f := FloatBetween(1, 5)
		require.GreaterOrEqual(t, f, 1.0)
		require.LessOrEqual(t, f, 5.0)
	}
}

func TestMoneyAmountBetween(t *testing.T) {
	amount := MoneyAmountBetween(10, 20)
	require.True(t, amount.GreaterThanOrEqual(decimal.NewFromInt(10)))
	require.True(t, amount.LessThanOrEqual(decimal.NewFromInt(20)))
}

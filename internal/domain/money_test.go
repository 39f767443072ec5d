package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurrency(t *testing.T) {
	c, err := ParseCurrency("jpy")
	require.NoError(t, err)
	assert.Equal(t, JPY, c)

	_, err = ParseCurrency("EUR")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNewMoney(t *testing.T) {
	m, err := NewMoney(decimal.NewFromInt(50000), "JPY")
	require.NoError(t, err)
	assert.Equal(t, "50000 JPY", m.String())

	_, err = NewMoney(decimal.NewFromInt(-1), "USD")
	assert.ErrorIs(t, err, ErrValidation)

	zero, err := NewMoney(decimal.Zero, "USD")
	require.NoError(t, err)
	assert.True(t, zero.Amount.IsZero())
}

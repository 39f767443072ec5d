package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Currency string

const (
	JPY Currency = "JPY"
	USD Currency = "USD"
)

var supportedCurrencies = map[Currency]struct{}{
	JPY: {},
	USD: {},
}

// ParseCurrency normalizes code to upper case and checks it is supported.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if _, ok := supportedCurrencies[c]; !ok {
		return "", validationErrorf("unsupported currency %q (supported: JPY, USD)", code)
	}
	return c, nil
}

// Money is a non-negative amount in a supported currency.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	c, err := ParseCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	if amount.IsNegative() {
		return Money{}, validationErrorf("amount cannot be negative")
	}
	return Money{Amount: amount, Currency: c}, nil
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.String(), m.Currency)
}

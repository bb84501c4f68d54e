package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code accepted by the catalog.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyINR Currency = "INR"
)

var currencies = []Currency{CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyINR}

// Currencies lists the accepted currencies in display order.
func Currencies() []Currency {
	return append([]Currency(nil), currencies...)
}

// ParseCurrency accepts any letter case.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range currencies {
		if c == known {
			return c, nil
		}
	}
	return "", ErrInvalidCurrency
}

// Money is a price in a currency. Amounts are exact decimals.
type Money struct {
	Amount   decimal.Decimal
	Currency Currency
}

func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if err := validatePrice(amount); err != nil {
		return Money{}, err
	}
	c, err := ParseCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	return Money{Amount: amount, Currency: c}, nil
}

func (m Money) String() string {
	return m.Amount.StringFixed(2) + " " + string(m.Currency)
}

func validatePrice(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositivePrice
	}
	return nil
}

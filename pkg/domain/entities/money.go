package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency identifies the unit money amounts are expressed in
type Currency struct {
	Code       string
	MinorUnits int32
}

// DefaultCurrency is used when a requisition is built without a currency option
var DefaultCurrency = Currency{Code: "USD", MinorUnits: 2}

// NewCurrency creates a validated Currency
func NewCurrency(code string, minorUnits int32) (Currency, error) {
	if len(code) != 3 {
		return Currency{}, fmt.Errorf("currency code must have 3 letters, got %q", code)
	}
	if minorUnits < 0 {
		return Currency{}, fmt.Errorf("minor units cannot be negative, got %d", minorUnits)
	}
	return Currency{Code: code, MinorUnits: minorUnits}, nil
}

// Money is an amount rounded to the minor unit of its currency
type Money struct {
	Amount   decimal.Decimal
	Currency Currency
}

// ZeroMoney returns a zero amount in the given currency
func ZeroMoney(currency Currency) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// NewMoney rounds amount to the currency's minor unit
func NewMoney(amount decimal.Decimal, currency Currency) Money {
	return Money{Amount: amount.Round(currency.MinorUnits), Currency: currency}
}

// Plus adds two amounts of the same currency
func (m Money) Plus(other Money) (Money, error) {
	if m.Currency.Code != other.Currency.Code {
		return m, fmt.Errorf("cannot add %s to %s", other.Currency.Code, m.Currency.Code)
	}
	return NewMoney(m.Amount.Add(other.Amount), m.Currency), nil
}

// Times multiplies the amount by a pack count
func (m Money) Times(count int64) Money {
	return NewMoney(m.Amount.Mul(decimal.NewFromInt(count)), m.Currency)
}

// IsZero reports whether the amount is zero
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// Equal compares amount and currency
func (m Money) Equal(other Money) bool {
	return m.Currency.Code == other.Currency.Code && m.Amount.Equal(other.Amount)
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Currency.Code, m.Amount.StringFixed(m.Currency.MinorUnits))
}

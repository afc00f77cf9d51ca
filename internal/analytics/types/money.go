package types

import "github.com/shopspring/decimal"

// Money is a currency amount rounded to cents. It marshals as a bare JSON
// number with exactly two decimals, e.g. 120.50.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d.Round(2)}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.StringFixed(2)), nil
}

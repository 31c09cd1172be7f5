package dto

import "github.com/shopspring/decimal"

// Money renders an amount as a JSON number with two decimals.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// NewNullMoney returns nil for an invalid NullDecimal.
func NewNullMoney(d decimal.NullDecimal) *Money {
	if !d.Valid {
		return nil
	}
	m := NewMoney(d.Decimal)
	return &m
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.StringFixed(2)), nil
}

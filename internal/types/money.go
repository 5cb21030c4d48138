// README: Common money value object used across modules.
package types

import "strconv"

type Money struct {
	Amount   int64
	Currency string
}

// Mul scales the amount by a whole quantity, keeping the currency.
func (m Money) Mul(qty int) Money {
	return Money{Amount: m.Amount * int64(qty), Currency: m.Currency}
}

// Add assumes a single-currency deployment; mixed currencies never occur
// inside one cart.
func (m Money) Add(other Money) Money {
	cur := m.Currency
	if cur == "" {
		cur = other.Currency
	}
	return Money{Amount: m.Amount + other.Amount, Currency: cur}
}

func (m Money) String() string {
	s := strconv.FormatInt(m.Amount, 10)
	if m.Currency != "" {
		s += " " + m.Currency
	}
	return s
}

package settlement

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidDiscount is returned when a discount token cannot be parsed or
// carries a negative value.
var ErrInvalidDiscount = errors.New("invalid discount")

// DiscountKind tags how a discount value is interpreted
type DiscountKind int

const (
	DiscountAbsolute   DiscountKind = 0
	DiscountPercentage DiscountKind = 1
)

// Discount is a tagged discount value: either an absolute currency amount
// or a percentage of the line's pre-discount total. It is resolved to an
// absolute amount at evaluation time and clamped to the line total.
type Discount struct {
	Kind  DiscountKind    `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

// Absolute builds an absolute-amount discount
func Absolute(amount decimal.Decimal) Discount {
	return Discount{Kind: DiscountAbsolute, Value: amount}
}

// Percentage builds a percentage-of-line discount
func Percentage(pct decimal.Decimal) Discount {
	return Discount{Kind: DiscountPercentage, Value: pct}
}

// ParseDiscount parses operator input: "12.50" is an absolute amount,
// "10%" is a percentage of the line total. Empty input is a zero discount.
func ParseDiscount(s string) (Discount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Absolute(decimal.Zero), nil
	}
	if strings.HasSuffix(s, "%") {
		pct, err := decimal.NewFromString(strings.TrimSpace(strings.TrimSuffix(s, "%")))
		if err != nil || pct.IsNegative() {
			return Discount{}, ErrInvalidDiscount
		}
		return Percentage(pct), nil
	}
	amount, err := decimal.NewFromString(s)
	if err != nil || amount.IsNegative() {
		return Discount{}, ErrInvalidDiscount
	}
	return Absolute(amount), nil
}

// Resolve converts the discount to an absolute amount for a line with the
// given pre-discount total, clamped into [0, lineTotal]. Over-large
// discounts clamp rather than error; that is deliberate policy, matching
// how the register treats an operator typing a discount bigger than the
// line.
func (d Discount) Resolve(lineTotal decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch d.Kind {
	case DiscountPercentage:
		amount = lineTotal.Mul(d.Value).Div(decimal.NewFromInt(100))
	default:
		amount = d.Value
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	if amount.GreaterThan(lineTotal) {
		return lineTotal
	}
	return amount
}

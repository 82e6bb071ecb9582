package settlement

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Validation errors raised by cart computation
var (
	ErrNegativeQuantity = errors.New("line quantity must not be negative")
	ErrNegativePrice    = errors.New("unit price must not be negative")
	ErrNegativeDelivery = errors.New("delivery charge must not be negative")
)

// ComponentLine is a bundle sub-item: no price of its own, quantity per
// unit of the parent line. Components only matter for stock movement.
type ComponentLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// CartLine is one editable line in a sale draft. ProductID is nil for
// custom (non-catalogue) items.
type CartLine struct {
	ProductID   *uuid.UUID
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Discount    Discount
	Unit        string
	WarrantyMonths int
	Components  []ComponentLine
}

// Gross returns the line's pre-discount total
func (l CartLine) Gross() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Net returns the line total after its own discount
func (l CartLine) Net() decimal.Decimal {
	return l.Gross().Sub(l.Discount.Resolve(l.Gross()))
}

// CourierPricing is the weight-banded price table of a carrier
type CourierPricing struct {
	FirstKgPrice      decimal.Decimal
	AdditionalKgPrice decimal.Decimal
}

// Delivery describes how the delivery charge is determined. When Courier is
// set the charge derives from weight; otherwise Manual is used as-is.
// FreeShipping forces the charge to zero either way.
type Delivery struct {
	Manual       decimal.Decimal
	Courier      *CourierPricing
	WeightKg     decimal.Decimal
	FreeShipping bool
}

// Charge resolves the delivery charge
func (d Delivery) Charge() (decimal.Decimal, error) {
	if d.FreeShipping {
		return decimal.Zero, nil
	}
	if d.Courier != nil {
		if !d.WeightKg.IsPositive() {
			return decimal.Zero, nil
		}
		extra := d.WeightKg.Sub(decimal.NewFromInt(1))
		if extra.IsNegative() {
			extra = decimal.Zero
		}
		return d.Courier.FirstKgPrice.Add(extra.Mul(d.Courier.AdditionalKgPrice)), nil
	}
	if d.Manual.IsNegative() {
		return decimal.Zero, ErrNegativeDelivery
	}
	return d.Manual, nil
}

// CartResult is the breakdown a computed cart settles to:
// Total = Subtotal - ItemDiscountTotal - OverallDiscount + DeliveryCharge.
type CartResult struct {
	Subtotal          decimal.Decimal `json:"subtotal"`
	ItemDiscountTotal decimal.Decimal `json:"item_discount_total"`
	OverallDiscount   decimal.Decimal `json:"overall_discount"`
	DeliveryCharge    decimal.Decimal `json:"delivery_charge"`
	Total             decimal.Decimal `json:"total"`
	// LineDiscounts holds each line's resolved absolute discount, in input order
	LineDiscounts []decimal.Decimal `json:"line_discounts"`
}

// ComputeCart derives the cart totals. Pure: no side effects, recomputed in
// full on every edit. Negative quantity or price is a validation error;
// oversized discounts clamp.
func ComputeCart(lines []CartLine, overallDiscount Discount, delivery Delivery) (CartResult, error) {
	var subtotal, itemDiscounts decimal.Decimal
	lineDiscounts := make([]decimal.Decimal, len(lines))

	for i, line := range lines {
		if line.Quantity < 0 {
			return CartResult{}, ErrNegativeQuantity
		}
		if line.UnitPrice.IsNegative() {
			return CartResult{}, ErrNegativePrice
		}
		gross := line.Gross()
		resolved := line.Discount.Resolve(gross)
		subtotal = subtotal.Add(gross)
		itemDiscounts = itemDiscounts.Add(resolved)
		lineDiscounts[i] = resolved
	}

	charge, err := delivery.Charge()
	if err != nil {
		return CartResult{}, err
	}

	// The overall discount resolves against what the items are worth after
	// their own discounts, and clamps the same way line discounts do.
	afterItems := subtotal.Sub(itemDiscounts)
	overall := overallDiscount.Resolve(afterItems)

	return CartResult{
		Subtotal:          subtotal,
		ItemDiscountTotal: itemDiscounts,
		OverallDiscount:   overall,
		DeliveryCharge:    charge,
		Total:             afterItems.Sub(overall).Add(charge),
		LineDiscounts:     lineDiscounts,
	}, nil
}

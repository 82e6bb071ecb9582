package settlement

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Validation errors raised by refund calculation
var (
	ErrNothingToReturn        = errors.New("nothing to return: no item quantities and no delivery refund")
	ErrRefundExceedsPaid      = errors.New("refund exceeds the amount paid on the original invoice")
	ErrDeliveryRefundTooLarge = errors.New("delivery refund exceeds the invoice's delivery charge")
	ErrPayoutExceedsRefund    = errors.New("refund payouts exceed the total refund amount")
	ErrUnknownReturnLine      = errors.New("return references a line not on the invoice")
	ErrNegativeExpense        = errors.New("expense amount must be positive")
)

// ReturnableLine describes one original invoice line as the refund
// calculator needs it: the sale price fixed at the original sale, how many
// were sold and how many already went back.
type ReturnableLine struct {
	LineItemID       uuid.UUID
	ProductID        *uuid.UUID
	UnitPrice        decimal.Decimal
	Quantity         int
	QuantityReturned int
}

// MaxReturnable returns how many units of the line can still come back
func (l ReturnableLine) MaxReturnable() int {
	remaining := l.Quantity - l.QuantityReturned
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ReturnRequest is one requested return line, keyed to the original invoice
// line. The quantity clamps to what is still returnable.
type ReturnRequest struct {
	LineItemID uuid.UUID `json:"line_item_id"`
	Quantity   int       `json:"quantity"`
}

// Expense is a cost incurred handling the return. Recorded for reporting
// only; expenses never reduce or bound the refund ceiling.
type Expense struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// RefundLine is one accepted (clamped) return line with its refund value
type RefundLine struct {
	LineItemID uuid.UUID       `json:"line_item_id"`
	ProductID  *uuid.UUID      `json:"product_id,omitempty"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Refund     decimal.Decimal `json:"refund"`
}

// RefundResult is the bounded refund breakdown for a return
type RefundResult struct {
	Lines          []RefundLine    `json:"lines"`
	ItemsRefund    decimal.Decimal `json:"items_refund"`
	DeliveryRefund decimal.Decimal `json:"delivery_refund"`
	TotalRefund    decimal.Decimal `json:"total_refund"`
	// PayoutTotal is what goes back through payment methods; the remainder
	// (TotalRefund - PayoutTotal) is issued as store credit.
	PayoutTotal     decimal.Decimal `json:"payout_total"`
	CreditRemainder decimal.Decimal `json:"credit_remainder"`
}

// ComputeRefund derives the bounded refund for a return.
//
// Quantities clamp to each line's remaining returnable count and price at
// the original sale price, never the current one. refundCeiling is the hard
// bound: what was actually settled on the invoice to date minus what prior
// returns already refunded, so sequential returns can never hand back more
// than was ever paid. deliveryCap bounds the delivery refund the same way:
// the original charge minus delivery already refunded. Payout lines are
// independent of the refund amount but their sum must fit inside it;
// whatever is not paid out is returned as store credit.
func ComputeRefund(
	original []ReturnableLine,
	requests []ReturnRequest,
	deliveryRefund decimal.Decimal,
	deliveryCap decimal.Decimal,
	refundCeiling decimal.Decimal,
	expenses []Expense,
	payouts []PaymentLine,
) (RefundResult, error) {
	byLine := make(map[uuid.UUID]ReturnableLine, len(original))
	for _, line := range original {
		byLine[line.LineItemID] = line
	}

	var lines []RefundLine
	itemsRefund := decimal.Zero
	returnedUnits := 0

	for _, req := range requests {
		line, ok := byLine[req.LineItemID]
		if !ok {
			return RefundResult{}, fmt.Errorf("%w: %s", ErrUnknownReturnLine, req.LineItemID)
		}
		qty := req.Quantity
		if qty < 0 {
			qty = 0
		}
		if max := line.MaxReturnable(); qty > max {
			qty = max
		}
		if qty == 0 {
			continue
		}
		refund := line.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
		lines = append(lines, RefundLine{
			LineItemID: line.LineItemID,
			ProductID:  line.ProductID,
			Quantity:   qty,
			UnitPrice:  line.UnitPrice,
			Refund:     refund,
		})
		itemsRefund = itemsRefund.Add(refund)
		returnedUnits += qty
	}

	if deliveryRefund.IsNegative() {
		deliveryRefund = decimal.Zero
	}
	if deliveryRefund.GreaterThan(deliveryCap) {
		return RefundResult{}, ErrDeliveryRefundTooLarge
	}

	if returnedUnits == 0 && !deliveryRefund.IsPositive() {
		return RefundResult{}, ErrNothingToReturn
	}

	for _, exp := range expenses {
		if !exp.Amount.IsPositive() {
			return RefundResult{}, ErrNegativeExpense
		}
	}

	totalRefund := itemsRefund.Add(deliveryRefund)
	if totalRefund.GreaterThan(refundCeiling) {
		return RefundResult{}, fmt.Errorf("%w: %s > %s", ErrRefundExceedsPaid, totalRefund, refundCeiling)
	}

	payoutTotal := decimal.Zero
	for _, p := range payouts {
		if p.Amount.IsNegative() {
			return RefundResult{}, ErrNegativePayment
		}
		payoutTotal = payoutTotal.Add(p.Amount)
	}
	if payoutTotal.GreaterThan(totalRefund) {
		return RefundResult{}, ErrPayoutExceedsRefund
	}

	return RefundResult{
		Lines:           lines,
		ItemsRefund:     itemsRefund,
		DeliveryRefund:  deliveryRefund,
		TotalRefund:     totalRefund,
		PayoutTotal:     payoutTotal,
		CreditRemainder: totalRefund.Sub(payoutTotal),
	}, nil
}

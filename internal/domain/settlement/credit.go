package settlement

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrSettleBalanceUnavailable is returned when balance settlement is
// requested on a sale type or customer state that does not offer it.
var ErrSettleBalanceUnavailable = errors.New("balance settlement not available for this sale")

// CreditAllocation is the outcome of applying customer credit (and
// optionally settling an outstanding balance) to a cart total.
type CreditAllocation struct {
	CreditApplied      decimal.Decimal `json:"credit_applied"`
	OutstandingSettled decimal.Decimal `json:"outstanding_settled"`
	FinalTotal         decimal.Decimal `json:"final_total"`
}

// ClampCredit clamps a requested credit amount into
// [0, min(availableCredit, cartTotal)]. Out-of-range requests clamp rather
// than error; the register re-clamps on every edit.
func ClampCredit(requested, balance, cartTotal decimal.Decimal) decimal.Decimal {
	available := balance
	if available.IsNegative() {
		available = decimal.Zero
	}
	limit := decimal.Min(available, cartTotal)
	if limit.IsNegative() {
		limit = decimal.Zero
	}
	if requested.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(requested, limit)
}

// AllocateCredit applies customer credit to a cart total and, when asked,
// folds the customer's outstanding balance into the amount to collect.
//
//	finalTotal = (cartTotal - creditToApply) + (settleBalance ? outstanding : 0)
//
// The balance passed here must be the authoritative value; commit paths
// re-validate against the database under a conditional update, not the value
// read when the operator opened the sale.
func AllocateCredit(balance, cartTotal, requestedCredit decimal.Decimal, settleBalance bool, immediatePayment bool) (CreditAllocation, error) {
	credit := ClampCredit(requestedCredit, balance, cartTotal)

	alloc := CreditAllocation{
		CreditApplied: credit,
		FinalTotal:    cartTotal.Sub(credit),
	}

	if settleBalance {
		outstanding := decimal.Zero
		if balance.IsNegative() {
			outstanding = balance.Neg()
		}
		// Settlement is only offered on immediate-payment sales against a
		// customer who actually owes something.
		if !immediatePayment || !outstanding.IsPositive() {
			return CreditAllocation{}, ErrSettleBalanceUnavailable
		}
		alloc.OutstandingSettled = outstanding
		alloc.FinalTotal = alloc.FinalTotal.Add(outstanding)
	}

	return alloc, nil
}

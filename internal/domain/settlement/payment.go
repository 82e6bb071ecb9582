package settlement

import (
	"errors"
	"fmt"

	"github.com/ledgerpos/settlement-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// Validation errors raised by payment splitting
var (
	ErrNoPaymentLines      = errors.New("at least one payment line is required")
	ErrDuplicateMethod     = errors.New("payment method used on more than one line")
	ErrUnknownMethod       = errors.New("payment method is not configured")
	ErrMissingReference    = errors.New("payment method requires a reference number")
	ErrSettlementShortfall = errors.New("sale type requires full settlement at commit")
	ErrNegativePayment     = errors.New("payment amount must be positive")
)

// PaymentLine is one payment instrument used in a settlement
type PaymentLine struct {
	Method       string          `json:"method"`
	Amount       decimal.Decimal `json:"amount"`
	ChequeNumber string          `json:"cheque_number,omitempty"`
}

// MethodRule describes a configured payment method as the splitter needs
// it: whether a reference string (cheque number) must accompany each line.
type MethodRule struct {
	RequiresReference bool
}

// SplitResult is the validated outcome of a multi-line payment:
// what was paid, what remains due, any change owed back, and the invoice
// status the sale lands in.
type SplitResult struct {
	Payments   []PaymentLine      `json:"payments"`
	TotalPaid  decimal.Decimal    `json:"total_paid"`
	AmountDue  decimal.Decimal    `json:"amount_due"`
	ChangeDue  decimal.Decimal    `json:"change_due"`
	Status     enum.InvoiceStatus `json:"status"`
}

// SplitPayments validates and totals the payment lines against a final
// total.
//
// Rules: at least one line must be present (the register never lets the
// last line be removed); every method must be configured and appear on at
// most one line; methods flagged RequiresReference need a non-empty
// reference; lines with amount <= 0 are excluded from the committed set.
// Receipts must settle in full; invoices may leave an amount due. Change is
// only acknowledged on immediate-payment sales.
func SplitPayments(finalTotal decimal.Decimal, lines []PaymentLine, saleType enum.SaleType, methods map[string]MethodRule) (SplitResult, error) {
	if len(lines) == 0 {
		return SplitResult{}, ErrNoPaymentLines
	}

	seen := make(map[string]bool, len(lines))
	committed := make([]PaymentLine, 0, len(lines))
	totalPaid := decimal.Zero

	for _, line := range lines {
		rule, ok := methods[line.Method]
		if !ok {
			return SplitResult{}, fmt.Errorf("%w: %s", ErrUnknownMethod, line.Method)
		}
		if seen[line.Method] {
			return SplitResult{}, fmt.Errorf("%w: %s", ErrDuplicateMethod, line.Method)
		}
		seen[line.Method] = true

		if line.Amount.IsNegative() {
			return SplitResult{}, ErrNegativePayment
		}
		if !line.Amount.IsPositive() {
			// Zero lines are an editing artifact; drop them from the commit.
			continue
		}
		if rule.RequiresReference && line.ChequeNumber == "" {
			return SplitResult{}, fmt.Errorf("%w: %s", ErrMissingReference, line.Method)
		}
		committed = append(committed, line)
		totalPaid = totalPaid.Add(line.Amount)
	}

	amountDue := finalTotal.Sub(totalPaid)
	changeDue := decimal.Zero

	if amountDue.IsNegative() {
		if saleType.AllowsChange() {
			changeDue = amountDue.Neg()
		}
		amountDue = decimal.Zero
	}

	if saleType.RequiresFullSettlement() && amountDue.IsPositive() {
		return SplitResult{}, ErrSettlementShortfall
	}

	status := enum.InvoiceStatusPaid
	if amountDue.IsPositive() {
		if totalPaid.IsPositive() {
			status = enum.InvoiceStatusPartiallyPaid
		} else {
			status = enum.InvoiceStatusSent
		}
	}

	return SplitResult{
		Payments:  committed,
		TotalPaid: totalPaid,
		AmountDue: amountDue,
		ChangeDue: changeDue,
		Status:    status,
	}, nil
}

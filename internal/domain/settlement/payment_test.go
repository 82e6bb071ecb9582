package settlement

import (
	"errors"
	"testing"

	"github.com/ledgerpos/settlement-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

func testMethods() map[string]MethodRule {
	return map[string]MethodRule{
		"cash":   {},
		"card":   {},
		"cheque": {RequiresReference: true},
	}
}

func TestSplitPayments(t *testing.T) {
	tests := []struct {
		name       string
		finalTotal string
		lines      []PaymentLine
		saleType   enum.SaleType
		wantErr    error
		wantPaid   string
		wantDue    string
		wantChange string
		wantStatus enum.InvoiceStatus
		wantLines  int
	}{
		{
			name:       "Exact cash settlement",
			finalTotal: "100",
			lines:      []PaymentLine{{Method: "cash", Amount: dec("100")}},
			saleType:   enum.SaleTypeReceipt,
			wantPaid:   "100",
			wantDue:    "0",
			wantChange: "0",
			wantStatus: enum.InvoiceStatusPaid,
			wantLines:  1,
		},
		{
			name:       "Overpayment returns change on a receipt",
			finalTotal: "85",
			lines:      []PaymentLine{{Method: "cash", Amount: dec("100")}},
			saleType:   enum.SaleTypeReceipt,
			wantPaid:   "100",
			wantDue:    "0",
			wantChange: "15",
			wantStatus: enum.InvoiceStatusPaid,
			wantLines:  1,
		},
		{
			name:       "Split across methods",
			finalTotal: "120",
			lines: []PaymentLine{
				{Method: "cash", Amount: dec("50")},
				{Method: "card", Amount: dec("70")},
			},
			saleType:   enum.SaleTypeReceipt,
			wantPaid:   "120",
			wantDue:    "0",
			wantChange: "0",
			wantStatus: enum.InvoiceStatusPaid,
			wantLines:  2,
		},
		{
			name:       "Zero lines are dropped from the commit",
			finalTotal: "50",
			lines: []PaymentLine{
				{Method: "cash", Amount: dec("50")},
				{Method: "card", Amount: decimal.Zero},
			},
			saleType:   enum.SaleTypeReceipt,
			wantPaid:   "50",
			wantDue:    "0",
			wantChange: "0",
			wantStatus: enum.InvoiceStatusPaid,
			wantLines:  1,
		},
		{
			name:       "Receipt cannot leave an amount due",
			finalTotal: "100",
			lines:      []PaymentLine{{Method: "cash", Amount: dec("60")}},
			saleType:   enum.SaleTypeReceipt,
			wantErr:    ErrSettlementShortfall,
		},
		{
			name:       "Invoice may be partially paid",
			finalTotal: "100",
			lines:      []PaymentLine{{Method: "cash", Amount: dec("60")}},
			saleType:   enum.SaleTypeInvoice,
			wantPaid:   "60",
			wantDue:    "40",
			wantChange: "0",
			wantStatus: enum.InvoiceStatusPartiallyPaid,
			wantLines:  1,
		},
		{
			name:       "Invoice with nothing paid is sent",
			finalTotal: "100",
			lines:      []PaymentLine{{Method: "cash", Amount: decimal.Zero}},
			saleType:   enum.SaleTypeInvoice,
			wantPaid:   "0",
			wantDue:    "100",
			wantChange: "0",
			wantStatus: enum.InvoiceStatusSent,
			wantLines:  0,
		},
		{
			name:       "Invoice overpayment yields no change",
			finalTotal: "100",
			lines:      []PaymentLine{{Method: "card", Amount: dec("110")}},
			saleType:   enum.SaleTypeInvoice,
			wantPaid:   "110",
			wantDue:    "0",
			wantChange: "0",
			wantStatus: enum.InvoiceStatusPaid,
			wantLines:  1,
		},
		{
			name:       "No payment lines rejected",
			finalTotal: "10",
			lines:      nil,
			saleType:   enum.SaleTypeReceipt,
			wantErr:    ErrNoPaymentLines,
		},
		{
			name:       "Unknown method rejected",
			finalTotal: "10",
			lines:      []PaymentLine{{Method: "bitcoin", Amount: dec("10")}},
			saleType:   enum.SaleTypeReceipt,
			wantErr:    ErrUnknownMethod,
		},
		{
			name:       "Duplicate method rejected",
			finalTotal: "10",
			lines: []PaymentLine{
				{Method: "cash", Amount: dec("5")},
				{Method: "cash", Amount: dec("5")},
			},
			saleType: enum.SaleTypeReceipt,
			wantErr:  ErrDuplicateMethod,
		},
		{
			name:       "Cheque without a number rejected",
			finalTotal: "10",
			lines:      []PaymentLine{{Method: "cheque", Amount: dec("10")}},
			saleType:   enum.SaleTypeReceipt,
			wantErr:    ErrMissingReference,
		},
		{
			name:       "Cheque with a number accepted",
			finalTotal: "10",
			lines:      []PaymentLine{{Method: "cheque", Amount: dec("10"), ChequeNumber: "000451"}},
			saleType:   enum.SaleTypeReceipt,
			wantPaid:   "10",
			wantDue:    "0",
			wantChange: "0",
			wantStatus: enum.InvoiceStatusPaid,
			wantLines:  1,
		},
		{
			name:       "Negative amount rejected",
			finalTotal: "10",
			lines:      []PaymentLine{{Method: "cash", Amount: dec("-1")}},
			saleType:   enum.SaleTypeReceipt,
			wantErr:    ErrNegativePayment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitPayments(dec(tt.finalTotal), tt.lines, tt.saleType, testMethods())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SplitPayments() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if len(got.Payments) != tt.wantLines {
				t.Errorf("committed lines = %d, want %d", len(got.Payments), tt.wantLines)
			}
			if !got.TotalPaid.Equal(dec(tt.wantPaid)) {
				t.Errorf("TotalPaid = %s, want %s", got.TotalPaid, tt.wantPaid)
			}
			if !got.AmountDue.Equal(dec(tt.wantDue)) {
				t.Errorf("AmountDue = %s, want %s", got.AmountDue, tt.wantDue)
			}
			if !got.ChangeDue.Equal(dec(tt.wantChange)) {
				t.Errorf("ChangeDue = %s, want %s", got.ChangeDue, tt.wantChange)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %v, want %v", got.Status, tt.wantStatus)
			}
		})
	}
}

func TestSplitPaymentsZeroTotal(t *testing.T) {
	// A fully credit-covered receipt still carries its blank cash line; the
	// split settles at zero with nothing committed.
	got, err := SplitPayments(decimal.Zero, []PaymentLine{{Method: "cash", Amount: decimal.Zero}}, enum.SaleTypeReceipt, testMethods())
	if err != nil {
		t.Fatalf("SplitPayments() error = %v", err)
	}
	if len(got.Payments) != 0 {
		t.Errorf("committed lines = %d, want 0", len(got.Payments))
	}
	if got.Status != enum.InvoiceStatusPaid {
		t.Errorf("Status = %v, want %v", got.Status, enum.InvoiceStatusPaid)
	}
}

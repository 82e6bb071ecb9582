package settlement

import (
	"errors"
	"testing"

	"github.com/ledgerpos/settlement-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

func TestSaleDraftPaymentLines(t *testing.T) {
	d := NewSaleDraft(enum.SaleTypeReceipt)
	if len(d.Payments) != 1 || d.Payments[0].Method != "cash" {
		t.Fatalf("new draft payments = %+v, want a single blank cash line", d.Payments)
	}

	if err := d.RemovePayment(0); !errors.Is(err, ErrLastPaymentLine) {
		t.Errorf("RemovePayment on the last line error = %v, want %v", err, ErrLastPaymentLine)
	}

	if err := d.AddPayment(PaymentLine{Method: "cash", Amount: dec("5")}); !errors.Is(err, ErrDuplicateMethod) {
		t.Errorf("AddPayment with a repeated method error = %v, want %v", err, ErrDuplicateMethod)
	}
	if len(d.Payments) != 1 {
		t.Errorf("payments after rejected add = %+v, want the single cash line", d.Payments)
	}

	if err := d.AddPayment(PaymentLine{Method: "card", Amount: dec("10")}); err != nil {
		t.Fatalf("AddPayment() error = %v", err)
	}
	if err := d.RemovePayment(0); err != nil {
		t.Fatalf("RemovePayment() error = %v", err)
	}
	if len(d.Payments) != 1 || d.Payments[0].Method != "card" {
		t.Errorf("payments after removal = %+v, want only the card line", d.Payments)
	}

	if err := d.RemovePayment(5); !errors.Is(err, ErrLastPaymentLine) {
		t.Errorf("RemovePayment out of range on last line error = %v, want %v", err, ErrLastPaymentLine)
	}
}

func TestSaleDraftLines(t *testing.T) {
	d := NewSaleDraft(enum.SaleTypeReceipt)
	d.AddLine(CartLine{Description: "A", Quantity: 1, UnitPrice: dec("10")})
	d.AddLine(CartLine{Description: "B", Quantity: 1, UnitPrice: dec("20")})

	if err := d.SetLineDiscount(1, "50%"); err != nil {
		t.Fatalf("SetLineDiscount() error = %v", err)
	}
	if d.Lines[1].Discount.Kind != DiscountPercentage {
		t.Errorf("discount kind = %v, want percentage", d.Lines[1].Discount.Kind)
	}

	if err := d.SetLineDiscount(0, "bogus"); !errors.Is(err, ErrInvalidDiscount) {
		t.Errorf("SetLineDiscount(bogus) error = %v, want %v", err, ErrInvalidDiscount)
	}
	if err := d.SetLineDiscount(9, "5"); !errors.Is(err, ErrLineOutOfRange) {
		t.Errorf("SetLineDiscount out of range error = %v, want %v", err, ErrLineOutOfRange)
	}

	if err := d.RemoveLine(0); err != nil {
		t.Fatalf("RemoveLine() error = %v", err)
	}
	if len(d.Lines) != 1 || d.Lines[0].Description != "B" {
		t.Errorf("lines after removal = %+v, want only B", d.Lines)
	}
	if err := d.RemoveLine(3); !errors.Is(err, ErrLineOutOfRange) {
		t.Errorf("RemoveLine out of range error = %v, want %v", err, ErrLineOutOfRange)
	}
}

func TestSaleDraftQuote(t *testing.T) {
	d := NewSaleDraft(enum.SaleTypeReceipt)
	d.AddLine(CartLine{Description: "Amplifier", Quantity: 1, UnitPrice: dec("100")})
	d.SetRequestedCredit(dec("30"))
	d.Payments[0].Amount = dec("70")

	q, err := d.Quote(dec("45"), testMethods())
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}
	if !q.Cart.Total.Equal(dec("100")) {
		t.Errorf("cart total = %s, want 100", q.Cart.Total)
	}
	if !q.Credit.CreditApplied.Equal(dec("30")) {
		t.Errorf("credit applied = %s, want 30", q.Credit.CreditApplied)
	}
	if !q.Payment.TotalPaid.Equal(dec("70")) {
		t.Errorf("total paid = %s, want 70", q.Payment.TotalPaid)
	}
	if q.Payment.Status != enum.InvoiceStatusPaid {
		t.Errorf("status = %v, want paid", q.Payment.Status)
	}
}

func TestSaleDraftQuoteReclampsOnEdit(t *testing.T) {
	// The operator asked for more credit than the balance covers; each quote
	// clamps it again rather than erroring.
	d := NewSaleDraft(enum.SaleTypeReceipt)
	d.AddLine(CartLine{Description: "Cable", Quantity: 1, UnitPrice: dec("20")})
	d.SetRequestedCredit(dec("500"))
	d.Payments[0].Amount = decimal.Zero

	q, err := d.Quote(dec("50"), testMethods())
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}
	if !q.Credit.CreditApplied.Equal(dec("20")) {
		t.Errorf("credit applied = %s, want 20 (clamped to cart total)", q.Credit.CreditApplied)
	}
	if !q.Credit.FinalTotal.Equal(decimal.Zero) {
		t.Errorf("final total = %s, want 0", q.Credit.FinalTotal)
	}
}

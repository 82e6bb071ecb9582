package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/ledgerpos/settlement-api/internal/domain/enum"
	"github.com/ledgerpos/settlement-api/internal/domain/settlement"
	"github.com/ledgerpos/settlement-api/pkg/apperror"
)

func TestCommitSaleCashReceipt(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	customer := f.addCustomer("Amina", "0")
	product := f.addProduct("Widget", "25.00", 10)

	invoice, err := f.sales.CommitSale(ctx, &SaleInput{
		CustomerID: &customer.ID,
		SaleType:   enum.SaleTypeReceipt,
		Lines:      []SaleLineInput{{ProductID: &product.ID, Quantity: 2}},
		Payments:   []settlement.PaymentLine{{Method: "cash", Amount: mustDecimal("50.00")}},
	})
	if err != nil {
		t.Fatalf("CommitSale: %v", err)
	}

	if !invoice.Total.Equal(mustDecimal("50.00")) {
		t.Errorf("total = %s, want 50.00", invoice.Total)
	}
	if !invoice.AmountPaid.Equal(mustDecimal("50.00")) {
		t.Errorf("amount paid = %s, want 50.00", invoice.AmountPaid)
	}
	if invoice.Status != enum.InvoiceStatusPaid {
		t.Errorf("status = %v, want Paid", invoice.Status)
	}
	if got := f.products.quantity(product.ID); got != 8 {
		t.Errorf("stock = %d, want 8", got)
	}

	// A fully settled sale leaves the balance where it started
	postings := f.txns.forCustomer(customer.ID)
	if len(postings) != 2 {
		t.Fatalf("postings = %d, want 2", len(postings))
	}
	if !f.customers.balance(customer.ID).IsZero() {
		t.Errorf("balance = %s, want 0", f.customers.balance(customer.ID))
	}
}

func TestCommitSaleAppliesStoreCredit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	customer := f.addCustomer("Brian", "30.00")
	product := f.addProduct("Phone", "100.00", 5)

	invoice, err := f.sales.CommitSale(ctx, &SaleInput{
		CustomerID:    &customer.ID,
		SaleType:      enum.SaleTypeReceipt,
		Lines:         []SaleLineInput{{ProductID: &product.ID, Quantity: 1}},
		CreditToApply: mustDecimal("30.00"),
		Payments:      []settlement.PaymentLine{{Method: "cash", Amount: mustDecimal("70.00")}},
	})
	if err != nil {
		t.Fatalf("CommitSale: %v", err)
	}

	if !invoice.CreditApplied.Equal(mustDecimal("30.00")) {
		t.Errorf("credit applied = %s, want 30.00", invoice.CreditApplied)
	}
	if !invoice.AmountPaid.Equal(mustDecimal("70.00")) {
		t.Errorf("amount paid = %s, want 70.00", invoice.AmountPaid)
	}

	postings := f.txns.forCustomer(customer.ID)
	if len(postings) != 3 {
		t.Fatalf("postings = %d, want 3", len(postings))
	}
	if !strings.HasPrefix(postings[0].Description, "Store credit applied") {
		t.Errorf("first posting = %q, want credit application", postings[0].Description)
	}
	if !f.customers.balance(customer.ID).IsZero() {
		t.Errorf("balance = %s, want 0", f.customers.balance(customer.ID))
	}
}

func TestCommitSaleStaleCreditConflict(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	customer := f.addCustomer("Cara", "10.00")
	product := f.addProduct("Tablet", "100.00", 3)

	// Drafted against a balance of 30; the account now holds 10
	_, err := f.sales.CommitSale(ctx, &SaleInput{
		CustomerID:    &customer.ID,
		SaleType:      enum.SaleTypeReceipt,
		Lines:         []SaleLineInput{{ProductID: &product.ID, Quantity: 1}},
		CreditToApply: mustDecimal("30.00"),
		Payments:      []settlement.PaymentLine{{Method: "cash", Amount: mustDecimal("90.00")}},
	})
	if !apperror.IsConflict(err) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if got := f.products.quantity(product.ID); got != 3 {
		t.Errorf("stock = %d, want untouched 3", got)
	}
	if f.invoices.count() != 0 {
		t.Errorf("invoices = %d, want 0", f.invoices.count())
	}
}

func TestCommitSaleInsufficientStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	customer := f.addCustomer("Dave", "0")
	product := f.addProduct("Cable", "5.00", 1)

	_, err := f.sales.CommitSale(ctx, &SaleInput{
		CustomerID: &customer.ID,
		SaleType:   enum.SaleTypeReceipt,
		Lines:      []SaleLineInput{{ProductID: &product.ID, Quantity: 3}},
		Payments:   []settlement.PaymentLine{{Method: "cash", Amount: mustDecimal("15.00")}},
	})
	if !apperror.IsConflict(err) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if got := f.products.quantity(product.ID); got != 1 {
		t.Errorf("stock = %d, want untouched 1", got)
	}
	if len(f.txns.forCustomer(customer.ID)) != 0 {
		t.Errorf("postings written for a failed commit")
	}
}

func TestCommitSaleWalkInPostsNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	product := f.addProduct("Charger", "12.00", 4)

	invoice, err := f.sales.CommitSale(ctx, &SaleInput{
		SaleType: enum.SaleTypeReceipt,
		Lines:    []SaleLineInput{{ProductID: &product.ID, Quantity: 1}},
		Payments: []settlement.PaymentLine{{Method: "cash", Amount: mustDecimal("12.00")}},
	})
	if err != nil {
		t.Fatalf("CommitSale: %v", err)
	}
	if invoice.CustomerID != nil {
		t.Errorf("walk-in invoice carries a customer")
	}
	if invoice.Status != enum.InvoiceStatusPaid {
		t.Errorf("status = %v, want Paid", invoice.Status)
	}
	f.txns.mu.Lock()
	n := len(f.txns.postings)
	f.txns.mu.Unlock()
	if n != 0 {
		t.Errorf("postings = %d, want 0 for a walk-in", n)
	}
}

func TestCommitSaleWalkInInvoiceRejected(t *testing.T) {
	f := newFixture()
	product := f.addProduct("Laptop", "800.00", 2)

	_, err := f.sales.CommitSale(context.Background(), &SaleInput{
		SaleType: enum.SaleTypeInvoice,
		Lines:    []SaleLineInput{{ProductID: &product.ID, Quantity: 1}},
	})
	appErr := apperror.GetAppError(err)
	if appErr == nil || appErr.Code != http.StatusBadRequest {
		t.Fatalf("err = %v, want bad request", err)
	}
}

func TestCommitSaleLastUnitConcurrent(t *testing.T) {
	f := newFixture()
	customer := f.addCustomer("Eve", "0")
	product := f.addProduct("Console", "300.00", 1)

	input := func() *SaleInput {
		return &SaleInput{
			CustomerID: &customer.ID,
			SaleType:   enum.SaleTypeReceipt,
			Lines:      []SaleLineInput{{ProductID: &product.ID, Quantity: 1}},
			Payments:   []settlement.PaymentLine{{Method: "cash", Amount: mustDecimal("300.00")}},
		}
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.sales.CommitSale(context.Background(), input())
		}(i)
	}
	wg.Wait()

	var okCount, conflictCount int
	for _, err := range results {
		switch {
		case err == nil:
			okCount++
		case apperror.IsConflict(err):
			conflictCount++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if okCount != 1 || conflictCount != 1 {
		t.Errorf("ok = %d conflict = %d, want exactly one of each", okCount, conflictCount)
	}
	if got := f.products.quantity(product.ID); got != 0 {
		t.Errorf("stock = %d, want 0", got)
	}
	if f.invoices.count() != 1 {
		t.Errorf("invoices = %d, want 1", f.invoices.count())
	}
}

func TestCommitSaleDeferredInvoice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	customer := f.addCustomer("Frank", "0")
	product := f.addProduct("Monitor", "100.00", 2)

	invoice, err := f.sales.CommitSale(ctx, &SaleInput{
		CustomerID: &customer.ID,
		SaleType:   enum.SaleTypeInvoice,
		Lines:      []SaleLineInput{{ProductID: &product.ID, Quantity: 1}},
		Payments:   []settlement.PaymentLine{{Method: "cash", Amount: mustDecimal("60.00")}},
	})
	if err != nil {
		t.Fatalf("CommitSale: %v", err)
	}

	if invoice.Status != enum.InvoiceStatusPartiallyPaid {
		t.Errorf("status = %v, want PartiallyPaid", invoice.Status)
	}
	if invoice.DueDate == nil {
		t.Errorf("outstanding invoice has no due date")
	}
	if !invoice.AmountDue().Equal(mustDecimal("40.00")) {
		t.Errorf("amount due = %s, want 40.00", invoice.AmountDue())
	}
	// The account owes the unpaid remainder
	if !f.customers.balance(customer.ID).Equal(mustDecimal("-40.00")) {
		t.Errorf("balance = %s, want -40.00", f.customers.balance(customer.ID))
	}
}

func TestPayDue(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	customer := f.addCustomer("Grace", "0")
	product := f.addProduct("Desk", "100.00", 2)

	invoice, err := f.sales.CommitSale(ctx, &SaleInput{
		CustomerID: &customer.ID,
		SaleType:   enum.SaleTypeInvoice,
		Lines:      []SaleLineInput{{ProductID: &product.ID, Quantity: 1}},
		Payments:   []settlement.PaymentLine{{Method: "cash", Amount: mustDecimal("60.00")}},
	})
	if err != nil {
		t.Fatalf("CommitSale: %v", err)
	}

	// Paying more than the amount due is rejected
	_, err = f.sales.PayDue(ctx, invoice.ID, settlement.PaymentLine{Method: "cash", Amount: mustDecimal("50.00")})
	if err == nil {
		t.Fatalf("overpayment accepted")
	}

	paid, err := f.sales.PayDue(ctx, invoice.ID, settlement.PaymentLine{Method: "cash", Amount: mustDecimal("40.00")})
	if err != nil {
		t.Fatalf("PayDue: %v", err)
	}
	if paid.Status != enum.InvoiceStatusPaid {
		t.Errorf("status = %v, want Paid", paid.Status)
	}
	if !paid.AmountDue().IsZero() {
		t.Errorf("amount due = %s, want 0", paid.AmountDue())
	}
	if !f.customers.balance(customer.ID).IsZero() {
		t.Errorf("balance = %s, want 0", f.customers.balance(customer.ID))
	}

	// A settled invoice takes no further payments
	_, err = f.sales.PayDue(ctx, invoice.ID, settlement.PaymentLine{Method: "cash", Amount: mustDecimal("1.00")})
	if err == nil {
		t.Fatalf("payment against a settled invoice accepted")
	}
}

func TestPayDueUnwindsWhenPostingFails(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	customer := f.addCustomer("Greta", "0")
	product := f.addProduct("Cabinet", "100.00", 2)

	invoice, err := f.sales.CommitSale(ctx, &SaleInput{
		CustomerID: &customer.ID,
		SaleType:   enum.SaleTypeInvoice,
		Lines:      []SaleLineInput{{ProductID: &product.ID, Quantity: 1}},
		Payments:   []settlement.PaymentLine{{Method: "cash", Amount: mustDecimal("60.00")}},
	})
	if err != nil {
		t.Fatalf("CommitSale: %v", err)
	}
	balanceBefore := f.customers.balance(customer.ID)

	// The payment must not survive without its ledger credit
	f.txns.failPost = errors.New("connection reset")
	_, err = f.sales.PayDue(ctx, invoice.ID, settlement.PaymentLine{Method: "cash", Amount: mustDecimal("40.00")})
	if err == nil {
		t.Fatalf("payment with a failed posting accepted")
	}
	f.txns.failPost = nil

	after, _ := f.invoices.GetByID(ctx, invoice.ID)
	if after.Status != enum.InvoiceStatusPartiallyPaid {
		t.Errorf("status = %v, want still PartiallyPaid", after.Status)
	}
	if !after.AmountPaid.Equal(mustDecimal("60.00")) {
		t.Errorf("amount paid = %s, want still 60.00", after.AmountPaid)
	}
	if len(after.Payments) != 1 {
		t.Errorf("payment lines = %d, want the original 1", len(after.Payments))
	}
	if !f.customers.balance(customer.ID).Equal(balanceBefore) {
		t.Errorf("balance = %s, want unchanged %s", f.customers.balance(customer.ID), balanceBefore)
	}

	// The retry goes through cleanly
	paid, err := f.sales.PayDue(ctx, invoice.ID, settlement.PaymentLine{Method: "cash", Amount: mustDecimal("40.00")})
	if err != nil {
		t.Fatalf("PayDue retry: %v", err)
	}
	if paid.Status != enum.InvoiceStatusPaid {
		t.Errorf("status after retry = %v, want Paid", paid.Status)
	}
}

func TestQuoteSaleTouchesNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	customer := f.addCustomer("Hana", "50.00")
	product := f.addProduct("Mouse", "20.00", 5)

	quote, err := f.sales.QuoteSale(ctx, &SaleInput{
		CustomerID:    &customer.ID,
		SaleType:      enum.SaleTypeReceipt,
		Lines:         []SaleLineInput{{ProductID: &product.ID, Quantity: 1}},
		CreditToApply: mustDecimal("500.00"),
		Payments:      []settlement.PaymentLine{{Method: "cash"}},
	})
	if err != nil {
		t.Fatalf("QuoteSale: %v", err)
	}

	// An oversized credit request clamps at quote time
	if !quote.Credit.CreditApplied.Equal(mustDecimal("20.00")) {
		t.Errorf("credit applied = %s, want 20.00", quote.Credit.CreditApplied)
	}
	if !quote.Credit.FinalTotal.IsZero() {
		t.Errorf("final total = %s, want 0", quote.Credit.FinalTotal)
	}
	if got := f.products.quantity(product.ID); got != 5 {
		t.Errorf("stock = %d, want untouched 5", got)
	}
	if len(f.txns.forCustomer(customer.ID)) != 0 {
		t.Errorf("quote wrote ledger postings")
	}
	if !f.customers.balance(customer.ID).Equal(mustDecimal("50.00")) {
		t.Errorf("balance = %s, want untouched 50.00", f.customers.balance(customer.ID))
	}
}

func TestCommitSaleCustomLineAndDiscounts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	customer := f.addCustomer("Ivy", "0")
	product := f.addProduct("Keyboard", "40.00", 3)
	price := mustDecimal("15.00")

	invoice, err := f.sales.CommitSale(ctx, &SaleInput{
		CustomerID: &customer.ID,
		SaleType:   enum.SaleTypeReceipt,
		Lines: []SaleLineInput{
			{ProductID: &product.ID, Quantity: 1, Discount: "25%"},
			{Description: "Setup service", Quantity: 1, UnitPrice: &price},
		},
		Payments: []settlement.PaymentLine{{Method: "cash", Amount: mustDecimal("45.00")}},
	})
	if err != nil {
		t.Fatalf("CommitSale: %v", err)
	}

	// 40 less 25% plus the 15 custom line
	if !invoice.Total.Equal(mustDecimal("45.00")) {
		t.Errorf("total = %s, want 45.00", invoice.Total)
	}
	if !invoice.Discount.Equal(mustDecimal("10.00")) {
		t.Errorf("discount = %s, want 10.00", invoice.Discount)
	}
	if len(invoice.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(invoice.Lines))
	}
	if invoice.Lines[1].ProductID != nil {
		t.Errorf("custom line carries a product")
	}
	// Only the stocked line moves inventory
	if got := f.products.quantity(product.ID); got != 2 {
		t.Errorf("stock = %d, want 2", got)
	}
}

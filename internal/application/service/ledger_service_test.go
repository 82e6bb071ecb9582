package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/ledgerpos/settlement-api/internal/domain/enum"
	"github.com/ledgerpos/settlement-api/internal/domain/settlement"
)

func TestPostAdjustment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	customer := f.addCustomer("Xena", "10.00")

	txn, err := f.ledger.PostAdjustment(ctx, &AdjustmentInput{
		CustomerID:  customer.ID,
		Amount:      mustDecimal("5.00"),
		Type:        enum.TransactionDebit,
		Description: "Till shortfall correction",
	})
	if err != nil {
		t.Fatalf("PostAdjustment: %v", err)
	}
	if !f.customers.balance(customer.ID).Equal(mustDecimal("5.00")) {
		t.Errorf("balance = %s, want 5.00", f.customers.balance(customer.ID))
	}

	got, err := f.ledger.GetTransaction(ctx, txn.ID)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.Description != "Till shortfall correction" {
		t.Errorf("description = %q", got.Description)
	}
}

func TestPostAdjustmentValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	customer := f.addCustomer("Yara", "0")

	tests := []struct {
		name  string
		input AdjustmentInput
	}{
		{"zero amount", AdjustmentInput{CustomerID: customer.ID, Description: "x"}},
		{"negative amount", AdjustmentInput{CustomerID: customer.ID, Amount: mustDecimal("-3"), Description: "x"}},
		{"missing description", AdjustmentInput{CustomerID: customer.ID, Amount: mustDecimal("3")}},
		{"unknown customer", AdjustmentInput{CustomerID: uuid.New(), Amount: mustDecimal("3"), Description: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.ledger.PostAdjustment(ctx, &tt.input); err == nil {
				t.Fatalf("adjustment accepted")
			}
		})
	}
}

func TestCheckBalanceConsistent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	customer := f.addCustomer("Zane", "0")
	product := f.addProduct("Lamp", "20.00", 3)

	// Run a sale and an adjustment through the ledger, then verify the
	// stored column matches the recomputed sum.
	_, err := f.sales.CommitSale(ctx, &SaleInput{
		CustomerID: &customer.ID,
		SaleType:   enum.SaleTypeReceipt,
		Lines:      []SaleLineInput{{ProductID: &product.ID, Quantity: 1}},
		Payments:   []settlement.PaymentLine{{Method: "cash", Amount: mustDecimal("20.00")}},
	})
	if err != nil {
		t.Fatalf("CommitSale: %v", err)
	}
	_, err = f.ledger.PostAdjustment(ctx, &AdjustmentInput{
		CustomerID:  customer.ID,
		Amount:      mustDecimal("7.50"),
		Type:        enum.TransactionCredit,
		Description: "Goodwill credit",
	})
	if err != nil {
		t.Fatalf("PostAdjustment: %v", err)
	}

	check, err := f.ledger.CheckBalance(ctx, customer.ID)
	if err != nil {
		t.Fatalf("CheckBalance: %v", err)
	}
	if !check.Consistent {
		t.Errorf("stored %s != ledger sum %s", check.Stored, check.LedgerSum)
	}
	if !check.LedgerSum.Equal(mustDecimal("7.50")) {
		t.Errorf("ledger sum = %s, want 7.50", check.LedgerSum)
	}
}

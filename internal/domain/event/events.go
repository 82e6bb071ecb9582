package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Topics published on the event bus. Events fire only after the backing
// database transaction has committed.
const (
	TopicSaleCommitted     = "sale.committed"
	TopicReturnCommitted   = "return.committed"
	TopicReturnReversed    = "return.reversed"
	TopicRepairTransitioned = "repair.transitioned"
)

// SaleCommitted is emitted when a sale has been finalized: invoice written,
// stock decremented, ledger postings made.
type SaleCommitted struct {
	InvoiceID  uuid.UUID       `json:"invoice_id"`
	CustomerID *uuid.UUID      `json:"customer_id,omitempty"`
	Total      decimal.Decimal `json:"total"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// ReturnCommitted is emitted when a return has been committed
type ReturnCommitted struct {
	ReturnID    uuid.UUID       `json:"return_id"`
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	CustomerID  *uuid.UUID      `json:"customer_id,omitempty"`
	TotalRefund decimal.Decimal `json:"total_refund"`
	Restocked   bool            `json:"restocked"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// ReturnReversed is emitted when a return record has been deleted and its
// ledger and stock effects rolled back.
type ReturnReversed struct {
	ReturnID   uuid.UUID `json:"return_id"`
	InvoiceID  uuid.UUID `json:"invoice_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RepairTransitioned is emitted on every repair status change
type RepairTransitioned struct {
	RepairID   uuid.UUID  `json:"repair_id"`
	From       string     `json:"from"`
	To         string     `json:"to"`
	InvoiceID  *uuid.UUID `json:"invoice_id,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerpos/settlement-api/internal/config"
	"github.com/ledgerpos/settlement-api/internal/domain/entity"
	"github.com/ledgerpos/settlement-api/internal/domain/enum"
	"github.com/ledgerpos/settlement-api/internal/domain/event"
	"github.com/ledgerpos/settlement-api/internal/domain/repository"
	"github.com/ledgerpos/settlement-api/internal/domain/settlement"
	"github.com/ledgerpos/settlement-api/pkg/apperror"
	"github.com/ledgerpos/settlement-api/pkg/events"
	"github.com/shopspring/decimal"
)

// ReturnService commits and reverses returns against committed invoices
type ReturnService struct {
	returnRepo  repository.ReturnRepository
	invoiceRepo repository.InvoiceRepository
	productRepo repository.ProductRepository
	txnRepo     repository.TransactionRepository
	cfg         *config.SettlementConfig
	bus         *events.Bus
}

// NewReturnService creates a new return service
func NewReturnService(
	returnRepo repository.ReturnRepository,
	invoiceRepo repository.InvoiceRepository,
	productRepo repository.ProductRepository,
	txnRepo repository.TransactionRepository,
	cfg *config.SettlementConfig,
	bus *events.Bus,
) *ReturnService {
	return &ReturnService{
		returnRepo:  returnRepo,
		invoiceRepo: invoiceRepo,
		productRepo: productRepo,
		txnRepo:     txnRepo,
		cfg:         cfg,
		bus:         bus,
	}
}

// ReturnInput is a return as submitted, for quoting or committing
type ReturnInput struct {
	InvoiceID      uuid.UUID
	Items          []settlement.ReturnRequest
	DeliveryRefund decimal.Decimal
	RestockItems   bool
	Expenses       []settlement.Expense
	Payouts        []settlement.PaymentLine
	Notes          *string
}

// QuoteReturn derives the bounded refund for a return without committing it
func (s *ReturnService) QuoteReturn(ctx context.Context, input *ReturnInput) (*settlement.RefundResult, error) {
	_, result, err := s.computeReturn(ctx, input)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ReturnService) computeReturn(ctx context.Context, input *ReturnInput) (*entity.Invoice, *settlement.RefundResult, error) {
	invoice, err := s.invoiceRepo.GetWithLines(ctx, input.InvoiceID)
	if err != nil {
		return nil, nil, err
	}
	if invoice == nil {
		return nil, nil, apperror.NewNotFoundError("Invoice")
	}

	original := make([]settlement.ReturnableLine, len(invoice.Lines))
	for i, line := range invoice.Lines {
		original[i] = settlement.ReturnableLine{
			LineItemID:       line.ID,
			ProductID:        line.ProductID,
			UnitPrice:        line.UnitPrice,
			Quantity:         line.Quantity,
			QuantityReturned: line.QuantityReturned,
		}
	}

	// The ceiling is cumulative: what prior returns already handed back
	// comes off the settled amount, and refunded delivery off the charge.
	prior, err := s.returnRepo.SumRefundsByInvoice(ctx, invoice.ID)
	if err != nil {
		return nil, nil, err
	}
	ceiling := invoice.AmountSettled().Sub(prior.Total)
	if ceiling.IsNegative() {
		ceiling = decimal.Zero
	}
	deliveryCap := invoice.DeliveryCharge.Sub(prior.Delivery)
	if deliveryCap.IsNegative() {
		deliveryCap = decimal.Zero
	}

	result, err := settlement.ComputeRefund(
		original, input.Items,
		input.DeliveryRefund, deliveryCap,
		ceiling,
		input.Expenses, input.Payouts,
	)
	if err != nil {
		return nil, nil, apperror.NewUnprocessableError(err.Error())
	}

	if result.CreditRemainder.IsPositive() {
		if !s.cfg.RefundRemainderToCredit {
			return nil, nil, apperror.NewUnprocessableError(
				"Refund must be fully disbursed: store credit remainders are disabled")
		}
		if invoice.CustomerID == nil {
			return nil, nil, apperror.NewUnprocessableError(
				"No customer account to credit the refund remainder to")
		}
	}

	return invoice, &result, nil
}

// CommitReturn finalizes a return: writes the record, bumps the returned
// quantities on the invoice, restocks the items when asked, and posts the
// store-credit remainder to the customer ledger.
func (s *ReturnService) CommitReturn(ctx context.Context, input *ReturnInput) (*entity.ReturnRecord, error) {
	invoice, result, err := s.computeReturn(ctx, input)
	if err != nil {
		return nil, err
	}

	record := &entity.ReturnRecord{
		InvoiceID:      invoice.ID,
		CustomerID:     invoice.CustomerID,
		ItemsRefund:    result.ItemsRefund,
		DeliveryRefund: result.DeliveryRefund,
		TotalRefund:    result.TotalRefund,
		RestockItems:   input.RestockItems,
		Notes:          input.Notes,
	}
	for _, line := range result.Lines {
		record.Items = append(record.Items, entity.ReturnItem{
			LineItemID: line.LineItemID,
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
		})
	}
	for _, exp := range input.Expenses {
		record.Expenses = append(record.Expenses, entity.ReturnExpense{
			Description: exp.Description,
			Amount:      exp.Amount,
		})
	}
	for _, p := range input.Payouts {
		if !p.Amount.IsPositive() {
			continue
		}
		payment := entity.ReturnPayment{Method: p.Method, Amount: p.Amount}
		if p.ChequeNumber != "" {
			ref := p.ChequeNumber
			payment.ChequeNumber = &ref
		}
		record.Payments = append(record.Payments, payment)
	}

	if err := s.returnRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	deltas := make(map[uuid.UUID]int, len(result.Lines))
	for _, line := range result.Lines {
		deltas[line.LineItemID] = line.Quantity
	}
	if err := s.invoiceRepo.AdjustReturnedQuantities(ctx, deltas); err != nil {
		_ = s.returnRepo.Delete(ctx, record.ID)
		return nil, err
	}

	if err := s.invoiceRepo.UpdateReturnStatus(ctx, invoice.ID, deriveReturnStatus(invoice, deltas)); err != nil {
		s.unwindReturnCommit(ctx, invoice, record, deltas, nil)
		return nil, err
	}

	var increments map[uuid.UUID]int
	if input.RestockItems {
		increments = restockQuantities(invoice, result.Lines)
		if len(increments) > 0 {
			if err := s.productRepo.AtomicIncrementBatch(ctx, increments); err != nil {
				s.unwindReturnCommit(ctx, invoice, record, deltas, nil)
				return nil, err
			}
		}
	}

	if result.CreditRemainder.IsPositive() && invoice.CustomerID != nil {
		err := s.txnRepo.Post(ctx, &entity.Transaction{
			CustomerID:  *invoice.CustomerID,
			Amount:      result.CreditRemainder,
			Type:        enum.TransactionCredit,
			Description: "Refund to store credit for " + invoice.InvoiceNo,
			Date:        time.Now(),
			InvoiceID:   &invoice.ID,
			ReturnID:    &record.ID,
		})
		if err != nil {
			s.unwindReturnCommit(ctx, invoice, record, deltas, increments)
			return nil, err
		}
	}

	s.bus.Publish(event.TopicReturnCommitted, event.ReturnCommitted{
		ReturnID:    record.ID,
		InvoiceID:   invoice.ID,
		CustomerID:  invoice.CustomerID,
		TotalRefund: record.TotalRefund,
		Restocked:   record.RestockItems,
		OccurredAt:  time.Now(),
	})

	return record, nil
}

// deriveReturnStatus recomputes the invoice's return status after applying
// the given deltas to its lines.
func deriveReturnStatus(invoice *entity.Invoice, deltas map[uuid.UUID]int) enum.ReturnStatus {
	totalSold, totalReturned := 0, 0
	for _, line := range invoice.Lines {
		totalSold += line.Quantity
		totalReturned += line.QuantityReturned + deltas[line.ID]
	}
	switch {
	case totalReturned <= 0:
		return enum.ReturnStatusNone
	case totalReturned >= totalSold:
		return enum.ReturnStatusFully
	default:
		return enum.ReturnStatusPartially
	}
}

// restockQuantities maps the returned lines to stock increments, bundle
// components included.
func restockQuantities(invoice *entity.Invoice, lines []settlement.RefundLine) map[uuid.UUID]int {
	byID := make(map[uuid.UUID]*entity.LineItem, len(invoice.Lines))
	for i := range invoice.Lines {
		byID[invoice.Lines[i].ID] = &invoice.Lines[i]
	}

	increments := make(map[uuid.UUID]int)
	for _, line := range lines {
		item, ok := byID[line.LineItemID]
		if !ok {
			continue
		}
		if item.ProductID != nil {
			increments[*item.ProductID] += line.Quantity
		}
		for _, comp := range item.Components {
			increments[comp.ProductID] += comp.Quantity * line.Quantity
		}
	}
	return increments
}

// unwindReturnCommit backs out whatever a failed commit already applied.
// Best effort, in reverse order of the commit.
func (s *ReturnService) unwindReturnCommit(ctx context.Context, invoice *entity.Invoice, record *entity.ReturnRecord, deltas, increments map[uuid.UUID]int) {
	if len(increments) > 0 {
		_, _ = s.productRepo.AtomicDecrementBatch(ctx, increments)
	}
	reverse := make(map[uuid.UUID]int, len(deltas))
	for id, delta := range deltas {
		reverse[id] = -delta
	}
	_ = s.invoiceRepo.AdjustReturnedQuantities(ctx, reverse)
	_ = s.invoiceRepo.UpdateReturnStatus(ctx, invoice.ID, deriveReturnStatus(invoice, nil))
	_ = s.returnRepo.Delete(ctx, record.ID)
}

// unwindReturnReversal re-applies what a failed reversal already undid,
// deleted ledger postings included. Best effort.
func (s *ReturnService) unwindReturnReversal(ctx context.Context, invoice *entity.Invoice, decrements map[uuid.UUID]int, removed []entity.Transaction, deltas map[uuid.UUID]int) {
	if len(deltas) > 0 {
		reverse := make(map[uuid.UUID]int, len(deltas))
		for id, delta := range deltas {
			reverse[id] = -delta
		}
		_ = s.invoiceRepo.AdjustReturnedQuantities(ctx, reverse)
		_ = s.invoiceRepo.UpdateReturnStatus(ctx, invoice.ID, deriveReturnStatus(invoice, nil))
	}
	if len(removed) > 0 {
		txns := make([]*entity.Transaction, len(removed))
		for i := range removed {
			txns[i] = &removed[i]
		}
		_ = s.txnRepo.PostBatch(ctx, txns)
	}
	if len(decrements) > 0 {
		_ = s.productRepo.AtomicIncrementBatch(ctx, decrements)
	}
}

// GetReturn returns a return record with its items, expenses and payments
func (s *ReturnService) GetReturn(ctx context.Context, id uuid.UUID) (*entity.ReturnRecord, error) {
	record, err := s.returnRepo.GetWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperror.NewNotFoundError("Return")
	}
	return record, nil
}

// ListReturns returns return records matching the filter
func (s *ReturnService) ListReturns(ctx context.Context, params *repository.ReturnFilterParams) ([]entity.ReturnRecord, int64, error) {
	return s.returnRepo.List(ctx, params)
}

// DeleteReturn reverses a committed return in full: the postings it made
// are removed from the ledger, restocked items leave stock again, and the
// invoice's returned quantities roll back. Restocked stock that has since
// been sold makes the reversal a conflict.
func (s *ReturnService) DeleteReturn(ctx context.Context, id uuid.UUID) error {
	record, err := s.returnRepo.GetWithDetails(ctx, id)
	if err != nil {
		return err
	}
	if record == nil {
		return apperror.NewNotFoundError("Return")
	}

	invoice, err := s.invoiceRepo.GetWithLines(ctx, record.InvoiceID)
	if err != nil {
		return err
	}
	if invoice == nil {
		return apperror.NewNotFoundError("Invoice")
	}

	var decrements map[uuid.UUID]int
	if record.RestockItems {
		decrements = make(map[uuid.UUID]int)
		byID := make(map[uuid.UUID]*entity.LineItem, len(invoice.Lines))
		for i := range invoice.Lines {
			byID[invoice.Lines[i].ID] = &invoice.Lines[i]
		}
		for _, item := range record.Items {
			line, ok := byID[item.LineItemID]
			if !ok {
				continue
			}
			if line.ProductID != nil {
				decrements[*line.ProductID] += item.Quantity
			}
			for _, comp := range line.Components {
				decrements[comp.ProductID] += comp.Quantity * item.Quantity
			}
		}
		if len(decrements) > 0 {
			insufficient, err := s.productRepo.AtomicDecrementBatch(ctx, decrements)
			if err != nil {
				return err
			}
			if len(insufficient) > 0 {
				return apperror.NewConflictError("Restocked items have since been sold")
			}
		}
	}

	removed, err := s.txnRepo.DeleteByReturn(ctx, id)
	if err != nil {
		s.unwindReturnReversal(ctx, invoice, decrements, nil, nil)
		return err
	}

	deltas := make(map[uuid.UUID]int, len(record.Items))
	for _, item := range record.Items {
		deltas[item.LineItemID] = -item.Quantity
	}
	if err := s.invoiceRepo.AdjustReturnedQuantities(ctx, deltas); err != nil {
		s.unwindReturnReversal(ctx, invoice, decrements, removed, nil)
		return err
	}
	if err := s.invoiceRepo.UpdateReturnStatus(ctx, invoice.ID, deriveReturnStatus(invoice, deltas)); err != nil {
		s.unwindReturnReversal(ctx, invoice, decrements, removed, deltas)
		return err
	}

	if err := s.returnRepo.Delete(ctx, id); err != nil {
		s.unwindReturnReversal(ctx, invoice, decrements, removed, deltas)
		return err
	}

	s.bus.Publish(event.TopicReturnReversed, event.ReturnReversed{
		ReturnID:   id,
		InvoiceID:  invoice.ID,
		OccurredAt: time.Now(),
	})

	return nil
}

package service

import (
	"context"
	"fmt"
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
	"github.com/ledgerpos/settlement-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// SaleService drives the sale pipeline: quoting a draft and committing it
// into an invoice, stock movement and ledger postings.
type SaleService struct {
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	txnRepo      repository.TransactionRepository
	methodRepo   repository.PaymentMethodRepository
	courierRepo  repository.CourierRepository
	cfg          *config.SettlementConfig
	bus          *events.Bus
}

// NewSaleService creates a new sale service
func NewSaleService(
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	txnRepo repository.TransactionRepository,
	methodRepo repository.PaymentMethodRepository,
	courierRepo repository.CourierRepository,
	cfg *config.SettlementConfig,
	bus *events.Bus,
) *SaleService {
	return &SaleService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		txnRepo:      txnRepo,
		methodRepo:   methodRepo,
		courierRepo:  courierRepo,
		cfg:          cfg,
		bus:          bus,
	}
}

// ComponentInput is one bundle sub-item on a sale line
type ComponentInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// SaleLineInput represents one line of a sale. ProductID is optional for
// custom items; UnitPrice defaults to the catalogue price when nil.
type SaleLineInput struct {
	ProductID      *uuid.UUID
	Description    string
	Quantity       int
	UnitPrice      *decimal.Decimal
	Discount       string
	WarrantyMonths int
	Components     []ComponentInput
}

// DeliveryInput describes the requested delivery charge: a courier with a
// weight, or a manual amount. WeightKg of zero with a courier set derives
// the weight from the catalogue weights of the products on the sale.
type DeliveryInput struct {
	CourierID    *uuid.UUID
	WeightKg     decimal.Decimal
	ManualCharge decimal.Decimal
	FreeShipping bool
}

// SaleInput is a full sale as submitted by the register, for quoting or
// committing.
type SaleInput struct {
	CustomerID      *uuid.UUID
	SaleType        enum.SaleType
	Lines           []SaleLineInput
	OverallDiscount string
	Delivery        DeliveryInput
	CreditToApply   decimal.Decimal
	SettleBalance   bool
	Payments        []settlement.PaymentLine
	RepairID        *uuid.UUID
}

// saleComputation carries everything the commit path derives from an input
type saleComputation struct {
	customer   *entity.Customer
	cartLines  []settlement.CartLine
	cart       settlement.CartResult
	alloc      settlement.CreditAllocation
	split      settlement.SplitResult
	decrements map[uuid.UUID]int
}

// QuoteSale derives the full settlement for a draft sale without touching
// stock or the ledger. Out-of-range credit clamps here; only commit treats
// it as a conflict.
func (s *SaleService) QuoteSale(ctx context.Context, input *SaleInput) (*settlement.Quote, error) {
	comp, err := s.computeSale(ctx, input)
	if err != nil {
		return nil, err
	}
	return &settlement.Quote{Cart: comp.cart, Credit: comp.alloc, Payment: comp.split}, nil
}

func (s *SaleService) computeSale(ctx context.Context, input *SaleInput) (*saleComputation, error) {
	if len(input.Lines) == 0 {
		return nil, apperror.NewUnprocessableError("A sale requires at least one line")
	}

	var customer *entity.Customer
	if input.CustomerID != nil {
		var err error
		customer, err = s.customerRepo.GetByID(ctx, *input.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, apperror.NewNotFoundError("Customer")
		}
	} else {
		// Walk-in sales have no account to defer to or draw credit from.
		if input.SaleType == enum.SaleTypeInvoice {
			return nil, apperror.NewBadRequestError("A deferred invoice requires a customer")
		}
		if input.CreditToApply.IsPositive() || input.SettleBalance {
			return nil, apperror.NewBadRequestError("Credit and balance settlement require a customer")
		}
	}

	// Batch fetch every referenced product, components included
	productIDs := make([]uuid.UUID, 0, len(input.Lines))
	for _, line := range input.Lines {
		if line.ProductID != nil {
			productIDs = append(productIDs, *line.ProductID)
		}
		for _, comp := range line.Components {
			productIDs = append(productIDs, comp.ProductID)
		}
	}
	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	productMap := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	cartLines := make([]settlement.CartLine, 0, len(input.Lines))
	decrements := make(map[uuid.UUID]int)
	catalogueWeight := decimal.Zero

	for _, line := range input.Lines {
		cartLine := settlement.CartLine{
			Description:    line.Description,
			Quantity:       line.Quantity,
			WarrantyMonths: line.WarrantyMonths,
		}

		if line.ProductID != nil {
			product, exists := productMap[*line.ProductID]
			if !exists {
				return nil, apperror.NewNotFoundError(fmt.Sprintf("Product %s", *line.ProductID))
			}
			cartLine.ProductID = line.ProductID
			cartLine.UnitPrice = product.Price
			cartLine.Unit = product.Unit
			if cartLine.Description == "" {
				cartLine.Description = product.Name
			}
			catalogueWeight = catalogueWeight.Add(
				product.WeightKg.Mul(decimal.NewFromInt(int64(line.Quantity))))
			decrements[*line.ProductID] += line.Quantity
		}
		if line.UnitPrice != nil {
			cartLine.UnitPrice = *line.UnitPrice
		}
		if cartLine.Description == "" {
			return nil, apperror.NewUnprocessableError("A custom line requires a description")
		}

		for _, comp := range line.Components {
			if _, exists := productMap[comp.ProductID]; !exists {
				return nil, apperror.NewNotFoundError(fmt.Sprintf("Product %s", comp.ProductID))
			}
			cartLine.Components = append(cartLine.Components, settlement.ComponentLine{
				ProductID: comp.ProductID,
				Quantity:  comp.Quantity,
			})
			decrements[comp.ProductID] += comp.Quantity * line.Quantity
		}

		if line.Discount != "" {
			disc, err := settlement.ParseDiscount(line.Discount)
			if err != nil {
				return nil, apperror.NewUnprocessableError(err.Error())
			}
			cartLine.Discount = disc
		}

		cartLines = append(cartLines, cartLine)
	}

	var overall settlement.Discount
	if input.OverallDiscount != "" {
		overall, err = settlement.ParseDiscount(input.OverallDiscount)
		if err != nil {
			return nil, apperror.NewUnprocessableError(err.Error())
		}
	}

	delivery := settlement.Delivery{
		Manual:       input.Delivery.ManualCharge,
		WeightKg:     input.Delivery.WeightKg,
		FreeShipping: input.Delivery.FreeShipping,
	}
	if input.Delivery.CourierID != nil {
		courier, err := s.courierRepo.GetByID(ctx, *input.Delivery.CourierID)
		if err != nil {
			return nil, err
		}
		if courier == nil {
			return nil, apperror.NewNotFoundError("Courier")
		}
		delivery.Courier = &settlement.CourierPricing{
			FirstKgPrice:      courier.FirstKgPrice,
			AdditionalKgPrice: courier.AdditionalKgPrice,
		}
		if delivery.WeightKg.IsZero() {
			delivery.WeightKg = catalogueWeight
		}
	}

	cart, err := settlement.ComputeCart(cartLines, overall, delivery)
	if err != nil {
		return nil, apperror.NewUnprocessableError(err.Error())
	}

	balance := decimal.Zero
	if customer != nil {
		balance = customer.Balance
	}
	alloc, err := settlement.AllocateCredit(
		balance, cart.Total, input.CreditToApply,
		input.SettleBalance, input.SaleType.RequiresFullSettlement())
	if err != nil {
		return nil, apperror.NewUnprocessableError(err.Error())
	}

	methods, err := s.methodRules(ctx)
	if err != nil {
		return nil, err
	}
	split, err := settlement.SplitPayments(alloc.FinalTotal, input.Payments, input.SaleType, methods)
	if err != nil {
		return nil, apperror.NewUnprocessableError(err.Error())
	}

	return &saleComputation{
		customer:   customer,
		cartLines:  cartLines,
		cart:       cart,
		alloc:      alloc,
		split:      split,
		decrements: decrements,
	}, nil
}

func (s *SaleService) methodRules(ctx context.Context) (map[string]settlement.MethodRule, error) {
	active, err := s.methodRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	rules := make(map[string]settlement.MethodRule, len(active))
	for _, m := range active {
		rules[m.Name] = settlement.MethodRule{RequiresReference: m.RequiresReference}
	}
	return rules, nil
}

// CommitSale finalizes a sale: writes the invoice with its lines and
// payments, decrements stock, and posts the ledger entries. Stock and
// credit are re-validated against authoritative state at this point; a
// stale draft surfaces as a conflict, never as a silent partial commit.
func (s *SaleService) CommitSale(ctx context.Context, input *SaleInput) (*entity.Invoice, error) {
	comp, err := s.computeSale(ctx, input)
	if err != nil {
		return nil, err
	}

	// The quote clamps an oversized credit request; at commit a request the
	// balance no longer covers means the draft is stale.
	if input.CreditToApply.IsPositive() {
		wanted := decimal.Min(input.CreditToApply, comp.cart.Total)
		if wanted.GreaterThan(comp.alloc.CreditApplied) {
			return nil, apperror.NewConflictError("Customer credit changed since the sale was drafted")
		}
	}

	if len(comp.decrements) > 0 {
		insufficient, err := s.productRepo.AtomicDecrementBatch(ctx, comp.decrements)
		if err != nil {
			return nil, err
		}
		if len(insufficient) > 0 {
			return nil, apperror.NewConflictError(
				fmt.Sprintf("Insufficient stock for %d product(s)", len(insufficient)))
		}
	}

	invoice := s.buildInvoice(input, comp)
	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		s.restoreStock(ctx, comp.decrements)
		return nil, err
	}

	if comp.customer != nil {
		ok, err := s.postSaleLedger(ctx, invoice, comp, input.RepairID)
		if err != nil || !ok {
			_ = s.invoiceRepo.Delete(ctx, invoice.ID)
			s.restoreStock(ctx, comp.decrements)
			if err != nil {
				return nil, err
			}
			return nil, apperror.NewConflictError("Customer credit changed since the sale was drafted")
		}
	}

	s.bus.Publish(event.TopicSaleCommitted, event.SaleCommitted{
		InvoiceID:  invoice.ID,
		CustomerID: invoice.CustomerID,
		Total:      invoice.Total,
		AmountPaid: invoice.AmountPaid,
		OccurredAt: time.Now(),
	})

	return invoice, nil
}

func (s *SaleService) buildInvoice(input *SaleInput, comp *saleComputation) *entity.Invoice {
	invoice := &entity.Invoice{
		InvoiceNo:      generateInvoiceNo(),
		CustomerID:     input.CustomerID,
		SaleType:       input.SaleType,
		Status:         comp.split.Status,
		SubTotal:       comp.cart.Subtotal,
		Discount:       comp.cart.ItemDiscountTotal.Add(comp.cart.OverallDiscount),
		DeliveryCharge: comp.cart.DeliveryCharge,
		CreditApplied:  comp.alloc.CreditApplied,
		Total:          comp.cart.Total,
		AmountPaid:     comp.split.TotalPaid.Sub(comp.split.ChangeDue),
	}

	if input.SaleType == enum.SaleTypeInvoice && comp.split.Status.Outstanding() {
		due := time.Now().AddDate(0, 0, s.cfg.InvoiceDueDays)
		invoice.DueDate = &due
	}

	for i, line := range comp.cartLines {
		item := entity.LineItem{
			ProductID:      line.ProductID,
			Description:    line.Description,
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice,
			Discount:       comp.cart.LineDiscounts[i],
			Unit:           line.Unit,
			WarrantyMonths: line.WarrantyMonths,
		}
		for _, c := range line.Components {
			item.Components = append(item.Components, entity.BundleComponent{
				ProductID: c.ProductID,
				Quantity:  c.Quantity,
			})
		}
		invoice.Lines = append(invoice.Lines, item)
	}

	for _, p := range comp.split.Payments {
		invoice.Payments = append(invoice.Payments, entity.InvoicePayment{
			Method:       p.Method,
			Amount:       p.Amount,
			ChequeNumber: p.ChequeNumber,
		})
	}

	return invoice
}

// postSaleLedger writes the sale's postings in one atomic batch. The
// credit-application posting is guarded: if the balance no longer covers
// it the whole batch rolls back and (false, nil) comes back.
func (s *SaleService) postSaleLedger(ctx context.Context, invoice *entity.Invoice, comp *saleComputation, repairID *uuid.UUID) (bool, error) {
	customerID := comp.customer.ID
	now := time.Now()
	var txns []*entity.Transaction
	guardIndex := -1

	// The guarded posting goes first so its balance check runs against the
	// pre-batch balance, before the sale debit lands.
	if comp.alloc.CreditApplied.IsPositive() {
		guardIndex = len(txns)
		txns = append(txns, &entity.Transaction{
			CustomerID:  customerID,
			Amount:      comp.alloc.CreditApplied,
			Type:        enum.TransactionDebit,
			Description: "Store credit applied to " + invoice.InvoiceNo,
			Date:        now,
			InvoiceID:   &invoice.ID,
		})
	}

	saleCharge := comp.cart.Total.Sub(comp.alloc.CreditApplied)
	if saleCharge.IsPositive() {
		txns = append(txns, &entity.Transaction{
			CustomerID:  customerID,
			Amount:      saleCharge,
			Type:        enum.TransactionDebit,
			Description: "Sale " + invoice.InvoiceNo,
			Date:        now,
			InvoiceID:   &invoice.ID,
			RepairID:    repairID,
		})
	}

	received := comp.split.TotalPaid.Sub(comp.split.ChangeDue)
	if received.IsPositive() {
		desc := "Payment received for " + invoice.InvoiceNo
		if comp.alloc.OutstandingSettled.IsPositive() {
			desc = "Payment received for " + invoice.InvoiceNo + " incl. balance settlement"
		}
		txns = append(txns, &entity.Transaction{
			CustomerID:    customerID,
			Amount:        received,
			Type:          enum.TransactionCredit,
			Description:   desc,
			Date:          now,
			PaymentMethod: paymentMethodLabel(comp.split.Payments),
			InvoiceID:     &invoice.ID,
		})
	}

	if len(txns) == 0 {
		return true, nil
	}
	return s.txnRepo.PostBatchGuarded(ctx, txns, guardIndex)
}

func paymentMethodLabel(payments []settlement.PaymentLine) *string {
	if len(payments) == 0 {
		return nil
	}
	label := payments[0].Method
	if len(payments) > 1 {
		label = "split"
	}
	return &label
}

// restoreStock backs out a stock decrement when a later step of the commit
// failed. Best effort; a failure here is logged by the repository layer.
func (s *SaleService) restoreStock(ctx context.Context, decrements map[uuid.UUID]int) {
	if len(decrements) == 0 {
		return
	}
	_ = s.productRepo.AtomicIncrementBatch(ctx, decrements)
}

func generateInvoiceNo() string {
	return fmt.Sprintf("INV-%d", time.Now().UnixNano())
}

// GetInvoice returns an invoice with its lines and payments
func (s *SaleService) GetInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetWithLines(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return invoice, nil
}

// ListInvoices returns invoices matching the filter
func (s *SaleService) ListInvoices(ctx context.Context, params *repository.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	return s.invoiceRepo.List(ctx, params)
}

// PayDue records a payment against an outstanding invoice and posts the
// matching ledger credit.
func (s *SaleService) PayDue(ctx context.Context, invoiceID uuid.UUID, payment settlement.PaymentLine) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	if !invoice.Status.Outstanding() {
		return nil, apperror.NewUnprocessableError("Invoice is not outstanding")
	}
	if !payment.Amount.IsPositive() {
		return nil, apperror.NewUnprocessableError("Payment amount must be positive")
	}
	due := invoice.AmountDue()
	if payment.Amount.GreaterThan(due) {
		return nil, apperror.NewUnprocessableError(
			fmt.Sprintf("Payment %s exceeds the amount due %s", payment.Amount, due))
	}

	methods, err := s.methodRules(ctx)
	if err != nil {
		return nil, err
	}
	rule, ok := methods[payment.Method]
	if !ok {
		return nil, apperror.NewUnprocessableError(
			fmt.Sprintf("Payment method is not configured: %s", payment.Method))
	}
	if rule.RequiresReference && payment.ChequeNumber == "" {
		return nil, apperror.NewUnprocessableError(
			fmt.Sprintf("Payment method requires a reference number: %s", payment.Method))
	}

	status := enum.InvoiceStatusPartiallyPaid
	if payment.Amount.Equal(due) {
		status = enum.InvoiceStatusPaid
	}

	record := &entity.InvoicePayment{
		Method:       payment.Method,
		Amount:       payment.Amount,
		ChequeNumber: payment.ChequeNumber,
	}
	priorStatus := invoice.Status
	if err := s.invoiceRepo.RecordPayment(ctx, invoiceID, record, status); err != nil {
		return nil, err
	}

	if invoice.CustomerID != nil {
		err := s.txnRepo.Post(ctx, &entity.Transaction{
			CustomerID:    *invoice.CustomerID,
			Amount:        payment.Amount,
			Type:          enum.TransactionCredit,
			Description:   "Payment received for " + invoice.InvoiceNo,
			Date:          time.Now(),
			PaymentMethod: &payment.Method,
			InvoiceID:     &invoice.ID,
		})
		if err != nil {
			_ = s.invoiceRepo.RemovePayment(ctx, invoiceID, record.ID, priorStatus)
			return nil, err
		}
	}

	return s.invoiceRepo.GetByID(ctx, invoiceID)
}

// RefreshOverdue flips past-due outstanding invoices to Overdue. Run from a
// periodic job; the status is also derivable on read via ListOverdue.
func (s *SaleService) RefreshOverdue(ctx context.Context) (int, error) {
	flipped := 0
	params := &pagination.PaginationParams{Page: 1, PerPage: 100}
	for {
		overdue, total, err := s.invoiceRepo.ListOverdue(ctx, time.Now(), params)
		if err != nil {
			return flipped, err
		}
		for _, inv := range overdue {
			if inv.Status == enum.InvoiceStatusOverdue {
				continue
			}
			if err := s.invoiceRepo.UpdateStatus(ctx, inv.ID, enum.InvoiceStatusOverdue); err != nil {
				return flipped, err
			}
			flipped++
		}
		if int64(params.Page*params.PerPage) >= total {
			return flipped, nil
		}
		params.Page++
	}
}

// ListOverdueInvoices returns unpaid invoices past their due date
func (s *SaleService) ListOverdueInvoices(ctx context.Context, params *pagination.PaginationParams) ([]entity.Invoice, int64, error) {
	return s.invoiceRepo.ListOverdue(ctx, time.Now(), params)
}

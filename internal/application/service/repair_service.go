package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerpos/settlement-api/internal/domain/entity"
	"github.com/ledgerpos/settlement-api/internal/domain/enum"
	"github.com/ledgerpos/settlement-api/internal/domain/event"
	"github.com/ledgerpos/settlement-api/internal/domain/repairs"
	"github.com/ledgerpos/settlement-api/internal/domain/repository"
	"github.com/ledgerpos/settlement-api/internal/domain/settlement"
	"github.com/ledgerpos/settlement-api/pkg/apperror"
	"github.com/ledgerpos/settlement-api/pkg/events"
	"github.com/shopspring/decimal"
)

// RepairService drives the repair lifecycle. Transitions are validated by
// the repairs rules; billing transitions feed the normal sale pipeline or
// post store credit directly.
type RepairService struct {
	repairRepo   repository.RepairRepository
	damageRepo   repository.DamageLogRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	txnRepo      repository.TransactionRepository
	saleService  *SaleService
	bus          *events.Bus
}

// NewRepairService creates a new repair service
func NewRepairService(
	repairRepo repository.RepairRepository,
	damageRepo repository.DamageLogRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	txnRepo repository.TransactionRepository,
	saleService *SaleService,
	bus *events.Bus,
) *RepairService {
	return &RepairService{
		repairRepo:   repairRepo,
		damageRepo:   damageRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		txnRepo:      txnRepo,
		saleService:  saleService,
		bus:          bus,
	}
}

// CreateRepairInput is a customer repair intake
type CreateRepairInput struct {
	CustomerID  *uuid.UUID
	ProductID   *uuid.UUID
	Description string
	IsWarranty  bool
	RepairFee   decimal.Decimal
}

// CreateRepair takes in a customer repair job. A non-zero fee on a warranty
// repair is rejected up front; the fee stays pinned to zero until the
// warranty is voided.
func (s *RepairService) CreateRepair(ctx context.Context, input *CreateRepairInput) (*entity.Repair, error) {
	if input.Description == "" {
		return nil, apperror.NewUnprocessableError("A repair requires a description")
	}
	if input.RepairFee.IsNegative() {
		return nil, apperror.NewUnprocessableError("Repair fee must not be negative")
	}
	if input.IsWarranty && !input.RepairFee.IsZero() {
		return nil, apperror.NewUnprocessableError(repairs.ErrWarrantyFee.Error())
	}

	if input.CustomerID != nil {
		customer, err := s.customerRepo.GetByID(ctx, *input.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, apperror.NewNotFoundError("Customer")
		}
	}

	repair := &entity.Repair{
		CustomerID:  input.CustomerID,
		ProductID:   input.ProductID,
		Description: input.Description,
		Status:      enum.RepairStatusReceived,
		IsWarranty:  input.IsWarranty,
		RepairFee:   input.RepairFee,
	}
	if err := s.repairRepo.Create(ctx, repair); err != nil {
		return nil, err
	}
	return repair, nil
}

// CreateFromDamageLog raises an internal repair for a damaged unit. The
// repair carries no customer and never bills anyone; success puts the unit
// back into stock.
func (s *RepairService) CreateFromDamageLog(ctx context.Context, damageLogID uuid.UUID) (*entity.Repair, error) {
	log, err := s.damageRepo.GetByID(ctx, damageLogID)
	if err != nil {
		return nil, err
	}
	if log == nil {
		return nil, apperror.NewNotFoundError("Damage log entry")
	}
	if log.Resolved {
		return nil, apperror.NewUnprocessableError("Damage log entry is already resolved")
	}

	repair := &entity.Repair{
		ProductID:   &log.ProductID,
		Description: "Internal repair: " + log.Reason,
		Status:      enum.RepairStatusReceived,
		DamageLogID: &damageLogID,
	}
	if err := s.repairRepo.Create(ctx, repair); err != nil {
		return nil, err
	}
	return repair, nil
}

// GetRepair returns a repair with its parts
func (s *RepairService) GetRepair(ctx context.Context, id uuid.UUID) (*entity.Repair, error) {
	repair, err := s.repairRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if repair == nil {
		return nil, apperror.NewNotFoundError("Repair")
	}
	return repair, nil
}

// ListRepairs returns repairs matching the filter
func (s *RepairService) ListRepairs(ctx context.Context, params *repository.RepairFilterParams) ([]entity.Repair, int64, error) {
	return s.repairRepo.List(ctx, params)
}

func transitionState(repair *entity.Repair) repairs.State {
	return repairs.State{
		Status:        repair.Status,
		IsWarranty:    repair.IsWarranty,
		FromDamageLog: repair.DamageLogID != nil,
		RepairFee:     repair.RepairFee,
	}
}

func mapRepairErr(err error) error {
	switch {
	case errors.Is(err, repairs.ErrTerminalState),
		errors.Is(err, repairs.ErrIllegalTransition):
		return apperror.NewConflictError(err.Error())
	default:
		return apperror.NewUnprocessableError(err.Error())
	}
}

func (s *RepairService) publishTransition(repair *entity.Repair, from enum.RepairStatus) {
	s.bus.Publish(event.TopicRepairTransitioned, event.RepairTransitioned{
		RepairID:   repair.ID,
		From:       from.String(),
		To:         repair.Status.String(),
		InvoiceID:  repair.InvoiceID,
		OccurredAt: time.Now(),
	})
}

// StartRepair moves a received repair into progress
func (s *RepairService) StartRepair(ctx context.Context, id uuid.UUID) (*entity.Repair, error) {
	repair, err := s.GetRepair(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := repairs.Outcome(transitionState(repair), enum.RepairStatusInProgress); err != nil {
		return nil, mapRepairErr(err)
	}

	from := repair.Status
	repair.Status = enum.RepairStatusInProgress
	if err := s.repairRepo.Update(ctx, repair); err != nil {
		return nil, err
	}
	s.publishTransition(repair, from)
	return repair, nil
}

// AddPart records a part consumed by an in-progress repair. The price is
// fixed from the catalogue at this moment; stock moves only when the repair
// bills through the sale pipeline.
func (s *RepairService) AddPart(ctx context.Context, id, productID uuid.UUID, quantity int) (*entity.Repair, error) {
	repair, err := s.GetRepair(ctx, id)
	if err != nil {
		return nil, err
	}
	if repair.Status != enum.RepairStatusInProgress {
		return nil, apperror.NewUnprocessableError("Parts can only be added while the repair is in progress")
	}
	if quantity <= 0 {
		return nil, apperror.NewUnprocessableError("Part quantity must be positive")
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	item := &entity.RepairItem{
		RepairID:  id,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: product.Price,
	}
	if err := s.repairRepo.AddItem(ctx, item); err != nil {
		return nil, err
	}
	return s.GetRepair(ctx, id)
}

// SetFee sets the repair fee. The warranty gate pins the fee to zero; the
// fee only becomes editable once the warranty is voided.
func (s *RepairService) SetFee(ctx context.Context, id uuid.UUID, fee decimal.Decimal) (*entity.Repair, error) {
	repair, err := s.GetRepair(ctx, id)
	if err != nil {
		return nil, err
	}
	if repair.Status.Terminal() {
		return nil, apperror.NewConflictError(repairs.ErrTerminalState.Error())
	}
	if fee.IsNegative() {
		return nil, apperror.NewUnprocessableError("Repair fee must not be negative")
	}
	if repair.IsWarranty && !fee.IsZero() {
		return nil, apperror.NewUnprocessableError(repairs.ErrWarrantyFee.Error())
	}

	repair.RepairFee = fee
	if err := s.repairRepo.Update(ctx, repair); err != nil {
		return nil, err
	}
	return repair, nil
}

// VoidWarranty voids the warranty on an in-progress repair. One-way, and
// the reason is recorded; afterwards the fee becomes editable.
func (s *RepairService) VoidWarranty(ctx context.Context, id uuid.UUID, reason string) (*entity.Repair, error) {
	repair, err := s.GetRepair(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := repairs.ValidateVoid(transitionState(repair), reason); err != nil {
		return nil, apperror.NewUnprocessableError(err.Error())
	}

	repair.IsWarranty = false
	repair.WarrantyVoidReason = &reason
	if err := s.repairRepo.Update(ctx, repair); err != nil {
		return nil, err
	}
	return repair, nil
}

// CompleteRepairInput carries the billing side of a repair completion
type CompleteRepairInput struct {
	SaleType enum.SaleType
	Payments []settlement.PaymentLine
}

// CompleteRepair finishes an in-progress customer repair and bills it: the
// parts consumed plus the repair fee become an invoice committed through
// the normal sale pipeline. Under warranty everything bills at zero.
func (s *RepairService) CompleteRepair(ctx context.Context, id uuid.UUID, input *CompleteRepairInput) (*entity.Repair, error) {
	repair, err := s.GetRepair(ctx, id)
	if err != nil {
		return nil, err
	}

	state := transitionState(repair)
	outcome, err := repairs.Outcome(state, enum.RepairStatusCompleted)
	if err != nil {
		return nil, mapRepairErr(err)
	}
	if outcome != repairs.BillInvoice {
		return nil, apperror.NewUnprocessableError("Repair completion must bill an invoice")
	}

	saleInput := s.billingSaleInput(repair, input)
	for _, part := range repair.Items {
		productID := part.ProductID
		price := repairs.ReplacementPrice(repair.IsWarranty, part.UnitPrice)
		saleInput.Lines = append(saleInput.Lines, SaleLineInput{
			ProductID: &productID,
			Quantity:  part.Quantity,
			UnitPrice: &price,
		})
	}
	if fee := repairs.EffectiveFee(state); fee.IsPositive() {
		saleInput.Lines = append(saleInput.Lines, SaleLineInput{
			Description: "Repair fee",
			Quantity:    1,
			UnitPrice:   &fee,
		})
	}
	if len(saleInput.Lines) == 0 {
		// Nothing consumed and no fee: a zero line keeps the invoice trail.
		zero := decimal.Zero
		saleInput.Lines = append(saleInput.Lines, SaleLineInput{
			Description: "Repair " + repair.Description,
			Quantity:    1,
			UnitPrice:   &zero,
		})
	}

	return s.finishBilled(ctx, repair, enum.RepairStatusCompleted, saleInput)
}

// CompleteReplacementInput carries the replacement product and billing for
// an unrepairable unit handed back as a new one.
type CompleteReplacementInput struct {
	ReplacementProductID uuid.UUID
	Price                *decimal.Decimal
	SaleType             enum.SaleType
	Payments             []settlement.PaymentLine
}

// CompleteWithReplacement resolves an unrepairable repair by selling a
// replacement unit through the sale pipeline. The price defaults to the
// catalogue price, is operator-editable, and is forced to zero under
// warranty.
func (s *RepairService) CompleteWithReplacement(ctx context.Context, id uuid.UUID, input *CompleteReplacementInput) (*entity.Repair, error) {
	repair, err := s.GetRepair(ctx, id)
	if err != nil {
		return nil, err
	}

	outcome, err := repairs.Outcome(transitionState(repair), enum.RepairStatusCompletedReplaced)
	if err != nil {
		return nil, mapRepairErr(err)
	}
	if outcome != repairs.BillInvoice {
		return nil, apperror.NewUnprocessableError("Replacement must bill an invoice")
	}

	product, err := s.productRepo.GetByID(ctx, input.ReplacementProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	price := product.Price
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, apperror.NewUnprocessableError("Replacement price must not be negative")
		}
		price = *input.Price
	}
	price = repairs.ReplacementPrice(repair.IsWarranty, price)

	saleInput := s.billingSaleInput(repair, &CompleteRepairInput{
		SaleType: input.SaleType,
		Payments: input.Payments,
	})
	saleInput.Lines = []SaleLineInput{{
		ProductID: &input.ReplacementProductID,
		Quantity:  1,
		UnitPrice: &price,
	}}

	return s.finishBilled(ctx, repair, enum.RepairStatusCompletedReplaced, saleInput)
}

func (s *RepairService) billingSaleInput(repair *entity.Repair, input *CompleteRepairInput) *SaleInput {
	payments := input.Payments
	if len(payments) == 0 {
		// Zero-total completions still need a payment line for the splitter.
		payments = []settlement.PaymentLine{{Method: "cash", Amount: decimal.Zero}}
	}
	return &SaleInput{
		CustomerID: repair.CustomerID,
		SaleType:   input.SaleType,
		Payments:   payments,
		RepairID:   &repair.ID,
	}
}

func (s *RepairService) finishBilled(ctx context.Context, repair *entity.Repair, to enum.RepairStatus, saleInput *SaleInput) (*entity.Repair, error) {
	invoice, err := s.saleService.CommitSale(ctx, saleInput)
	if err != nil {
		return nil, err
	}

	from := repair.Status
	repair.Status = to
	repair.InvoiceID = &invoice.ID
	if err := s.repairRepo.Update(ctx, repair); err != nil {
		return nil, err
	}
	s.publishTransition(repair, from)
	return repair, nil
}

// MarkUnrepairable moves an in-progress repair to unrepairable. A customer
// repair logs the unit as damaged; an internal damage-log repair just ends
// with the entry left unresolved.
func (s *RepairService) MarkUnrepairable(ctx context.Context, id uuid.UUID, reason string) (*entity.Repair, error) {
	repair, err := s.GetRepair(ctx, id)
	if err != nil {
		return nil, err
	}

	outcome, err := repairs.Outcome(transitionState(repair), enum.RepairStatusUnrepairable)
	if err != nil {
		return nil, mapRepairErr(err)
	}

	if outcome == repairs.LogDamage && repair.ProductID != nil {
		if reason == "" {
			reason = "Unrepairable: " + repair.Description
		}
		err := s.damageRepo.Create(ctx, &entity.DamageLog{
			ProductID: *repair.ProductID,
			Quantity:  1,
			Reason:    reason,
		})
		if err != nil {
			return nil, err
		}
	}

	from := repair.Status
	repair.Status = enum.RepairStatusUnrepairable
	if err := s.repairRepo.Update(ctx, repair); err != nil {
		return nil, err
	}
	s.publishTransition(repair, from)
	return repair, nil
}

// CompleteWithCredit resolves an unrepairable customer repair by issuing
// store credit directly, with no invoice.
func (s *RepairService) CompleteWithCredit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*entity.Repair, error) {
	repair, err := s.GetRepair(ctx, id)
	if err != nil {
		return nil, err
	}

	outcome, err := repairs.Outcome(transitionState(repair), enum.RepairStatusCompletedCredit)
	if err != nil {
		return nil, mapRepairErr(err)
	}
	if outcome != repairs.BillStoreCredit {
		return nil, apperror.NewUnprocessableError("Repair resolution does not issue store credit")
	}
	if repair.CustomerID == nil {
		return nil, apperror.NewUnprocessableError("Store credit requires a customer")
	}
	if !amount.IsPositive() {
		return nil, apperror.NewUnprocessableError("Credit amount must be positive")
	}

	err = s.txnRepo.Post(ctx, &entity.Transaction{
		CustomerID:  *repair.CustomerID,
		Amount:      amount,
		Type:        enum.TransactionCredit,
		Description: "Store credit for unrepairable item",
		Date:        time.Now(),
		RepairID:    &repair.ID,
	})
	if err != nil {
		return nil, err
	}

	from := repair.Status
	repair.Status = enum.RepairStatusCompletedCredit
	if err := s.repairRepo.Update(ctx, repair); err != nil {
		return nil, err
	}
	s.publishTransition(repair, from)
	return repair, nil
}

// MarkRepaired finishes an internal damage-log repair: the unit goes back
// into saleable stock and the damage log entry resolves. Customer repairs
// never end here.
func (s *RepairService) MarkRepaired(ctx context.Context, id uuid.UUID) (*entity.Repair, error) {
	repair, err := s.GetRepair(ctx, id)
	if err != nil {
		return nil, err
	}

	outcome, err := repairs.Outcome(transitionState(repair), enum.RepairStatusRepaired)
	if err != nil {
		return nil, mapRepairErr(err)
	}
	if outcome != repairs.RestockItem || repair.DamageLogID == nil {
		return nil, apperror.NewUnprocessableError("Only damage-log repairs end at repaired")
	}

	log, err := s.damageRepo.GetByID(ctx, *repair.DamageLogID)
	if err != nil {
		return nil, err
	}
	if log == nil {
		return nil, apperror.NewNotFoundError("Damage log entry")
	}

	if err := s.productRepo.AtomicIncrementBatch(ctx, map[uuid.UUID]int{log.ProductID: log.Quantity}); err != nil {
		return nil, err
	}

	log.Resolved = true
	if err := s.damageRepo.Update(ctx, log); err != nil {
		return nil, err
	}

	from := repair.Status
	repair.Status = enum.RepairStatusRepaired
	if err := s.repairRepo.Update(ctx, repair); err != nil {
		return nil, err
	}
	s.publishTransition(repair, from)
	return repair, nil
}

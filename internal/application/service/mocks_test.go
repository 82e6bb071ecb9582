package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerpos/settlement-api/internal/config"
	"github.com/ledgerpos/settlement-api/internal/domain/entity"
	"github.com/ledgerpos/settlement-api/internal/domain/enum"
	"github.com/ledgerpos/settlement-api/internal/domain/repository"
	"github.com/ledgerpos/settlement-api/pkg/events"
	"github.com/ledgerpos/settlement-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// In-memory repository doubles. They mirror the contracts the real
// implementations keep: guarded decrements check-then-apply under one lock,
// ledger postings move the customer balance in the same step.

type mockCustomerRepo struct {
	mu        sync.Mutex
	customers map[uuid.UUID]*entity.Customer
}

func newMockCustomerRepo() *mockCustomerRepo {
	return &mockCustomerRepo{customers: make(map[uuid.UUID]*entity.Customer)}
}

func (m *mockCustomerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	stored := *customer
	m.customers[customer.ID] = &stored
	return nil
}

func (m *mockCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.customers[id]
	if !ok {
		return nil, nil
	}
	copied := *stored
	return &copied, nil
}

func (m *mockCustomerRepo) Update(ctx context.Context, customer *entity.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stored, ok := m.customers[customer.ID]; ok {
		balance := stored.Balance
		copied := *customer
		copied.Balance = balance
		m.customers[customer.ID] = &copied
	}
	return nil
}

func (m *mockCustomerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.customers, id)
	return nil
}

func (m *mockCustomerRepo) List(ctx context.Context, params *repository.CustomerFilterParams) ([]entity.Customer, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (m *mockCustomerRepo) balance(id uuid.UUID) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.customers[id]; ok {
		return c.Balance
	}
	return decimal.Zero
}

type mockProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*entity.Product
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: make(map[uuid.UUID]*entity.Product)}
}

func (m *mockProductRepo) Create(ctx context.Context, product *entity.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	stored := *product
	m.products[product.ID] = &stored
	return nil
}

func (m *mockProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	copied := *stored
	return &copied, nil
}

func (m *mockProductRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]entity.Product, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if stored, ok := m.products[id]; ok {
			out = append(out, *stored)
		}
	}
	return out, nil
}

func (m *mockProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.Code == code {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockProductRepo) Update(ctx context.Context, product *entity.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stored, ok := m.products[product.ID]; ok {
		qty := stored.Quantity
		copied := *product
		copied.Quantity = qty
		m.products[product.ID] = &copied
	}
	return nil
}

func (m *mockProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
	return nil
}

func (m *mockProductRepo) List(ctx context.Context, params *repository.ProductFilterParams) ([]entity.Product, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (m *mockProductRepo) AtomicDecrementBatch(ctx context.Context, decrements map[uuid.UUID]int) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var insufficient []uuid.UUID
	for id, amount := range decrements {
		p, ok := m.products[id]
		if !ok || p.Quantity < amount {
			insufficient = append(insufficient, id)
		}
	}
	if len(insufficient) > 0 {
		return insufficient, nil
	}
	for id, amount := range decrements {
		m.products[id].Quantity -= amount
	}
	return nil, nil
}

func (m *mockProductRepo) AtomicIncrementBatch(ctx context.Context, increments map[uuid.UUID]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, amount := range increments {
		if p, ok := m.products[id]; ok {
			p.Quantity += amount
		}
	}
	return nil
}

func (m *mockProductRepo) quantity(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.products[id]; ok {
		return p.Quantity
	}
	return 0
}

type mockInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]*entity.Invoice

	failAdjust error
}

func newMockInvoiceRepo() *mockInvoiceRepo {
	return &mockInvoiceRepo{invoices: make(map[uuid.UUID]*entity.Invoice)}
}

func (m *mockInvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	for i := range invoice.Lines {
		if invoice.Lines[i].ID == uuid.Nil {
			invoice.Lines[i].ID = uuid.New()
		}
		invoice.Lines[i].InvoiceID = invoice.ID
	}
	for i := range invoice.Payments {
		if invoice.Payments[i].ID == uuid.Nil {
			invoice.Payments[i].ID = uuid.New()
		}
		invoice.Payments[i].InvoiceID = invoice.ID
	}
	stored := *invoice
	m.invoices[invoice.ID] = &stored
	return nil
}

func (m *mockInvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return m.GetWithLines(ctx, id)
}

func (m *mockInvoiceRepo) GetWithLines(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.invoices[id]
	if !ok {
		return nil, nil
	}
	copied := *stored
	copied.Lines = append([]entity.LineItem(nil), stored.Lines...)
	copied.Payments = append([]entity.InvoicePayment(nil), stored.Payments...)
	return &copied, nil
}

func (m *mockInvoiceRepo) List(ctx context.Context, params *repository.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Invoice, 0, len(m.invoices))
	for _, inv := range m.invoices {
		out = append(out, *inv)
	}
	return out, int64(len(out)), nil
}

func (m *mockInvoiceRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.InvoiceStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv, ok := m.invoices[id]; ok {
		inv.Status = status
	}
	return nil
}

func (m *mockInvoiceRepo) UpdateReturnStatus(ctx context.Context, id uuid.UUID, status enum.ReturnStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv, ok := m.invoices[id]; ok {
		inv.ReturnStatus = status
	}
	return nil
}

func (m *mockInvoiceRepo) RecordPayment(ctx context.Context, id uuid.UUID, payment *entity.InvoicePayment, status enum.InvoiceStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return nil
	}
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	payment.InvoiceID = id
	inv.Payments = append(inv.Payments, *payment)
	inv.AmountPaid = inv.AmountPaid.Add(payment.Amount)
	inv.Status = status
	return nil
}

func (m *mockInvoiceRepo) RemovePayment(ctx context.Context, id uuid.UUID, paymentID uuid.UUID, status enum.InvoiceStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return nil
	}
	for i := range inv.Payments {
		if inv.Payments[i].ID == paymentID {
			inv.AmountPaid = inv.AmountPaid.Sub(inv.Payments[i].Amount)
			inv.Payments = append(inv.Payments[:i], inv.Payments[i+1:]...)
			break
		}
	}
	inv.Status = status
	return nil
}

func (m *mockInvoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.invoices, id)
	return nil
}

func (m *mockInvoiceRepo) AdjustReturnedQuantities(ctx context.Context, deltas map[uuid.UUID]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAdjust != nil {
		return m.failAdjust
	}
	for _, inv := range m.invoices {
		for i := range inv.Lines {
			if delta, ok := deltas[inv.Lines[i].ID]; ok {
				inv.Lines[i].QuantityReturned += delta
			}
		}
	}
	return nil
}

func (m *mockInvoiceRepo) ListOverdue(ctx context.Context, asOf time.Time, params *pagination.PaginationParams) ([]entity.Invoice, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Invoice
	for _, inv := range m.invoices {
		if inv.Status.Outstanding() && inv.DueDate != nil && inv.DueDate.Before(asOf) {
			out = append(out, *inv)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockInvoiceRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.invoices)
}

type mockTransactionRepo struct {
	mu        sync.Mutex
	postings  []entity.Transaction
	customers *mockCustomerRepo

	failPost error
}

func newMockTransactionRepo(customers *mockCustomerRepo) *mockTransactionRepo {
	return &mockTransactionRepo{customers: customers}
}

func (m *mockTransactionRepo) apply(txn *entity.Transaction) {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	m.postings = append(m.postings, *txn)
	m.customers.mu.Lock()
	if c, ok := m.customers.customers[txn.CustomerID]; ok {
		c.Balance = c.Balance.Add(txn.SignedAmount())
	}
	m.customers.mu.Unlock()
}

func (m *mockTransactionRepo) Post(ctx context.Context, txn *entity.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPost != nil {
		return m.failPost
	}
	m.apply(txn)
	return nil
}

func (m *mockTransactionRepo) PostBatch(ctx context.Context, txns []*entity.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, txn := range txns {
		m.apply(txn)
	}
	return nil
}

func (m *mockTransactionRepo) PostBatchGuarded(ctx context.Context, txns []*entity.Transaction, guardIndex int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if guardIndex >= 0 && guardIndex < len(txns) {
		guard := txns[guardIndex]
		// Replays the guarded UPDATE: postings before the guard have already
		// moved the balance when the condition is evaluated.
		balance := m.customers.balance(guard.CustomerID)
		for i := 0; i < guardIndex; i++ {
			balance = balance.Add(txns[i].SignedAmount())
		}
		if balance.LessThan(guard.Amount) {
			return false, nil
		}
	}
	for _, txn := range txns {
		m.apply(txn)
	}
	return true, nil
}

func (m *mockTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.postings {
		if m.postings[i].ID == id {
			copied := m.postings[i]
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockTransactionRepo) List(ctx context.Context, params *repository.TransactionFilterParams) ([]entity.Transaction, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Transaction
	for _, txn := range m.postings {
		if params.CustomerID != nil && txn.CustomerID != *params.CustomerID {
			continue
		}
		out = append(out, txn)
	}
	return out, int64(len(out)), nil
}

func (m *mockTransactionRepo) ListByReturn(ctx context.Context, returnID uuid.UUID) ([]entity.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Transaction
	for _, txn := range m.postings {
		if txn.ReturnID != nil && *txn.ReturnID == returnID {
			out = append(out, txn)
		}
	}
	return out, nil
}

func (m *mockTransactionRepo) SumSignedByCustomer(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := decimal.Zero
	for i := range m.postings {
		if m.postings[i].CustomerID == customerID {
			sum = sum.Add(m.postings[i].SignedAmount())
		}
	}
	return sum, nil
}

func (m *mockTransactionRepo) DeleteByReturn(ctx context.Context, returnID uuid.UUID) ([]entity.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted []entity.Transaction
	var kept []entity.Transaction
	for _, txn := range m.postings {
		if txn.ReturnID != nil && *txn.ReturnID == returnID {
			deleted = append(deleted, txn)
			m.customers.mu.Lock()
			if c, ok := m.customers.customers[txn.CustomerID]; ok {
				c.Balance = c.Balance.Sub(txn.SignedAmount())
			}
			m.customers.mu.Unlock()
			continue
		}
		kept = append(kept, txn)
	}
	m.postings = kept
	return deleted, nil
}

func (m *mockTransactionRepo) forCustomer(id uuid.UUID) []entity.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Transaction
	for _, txn := range m.postings {
		if txn.CustomerID == id {
			out = append(out, txn)
		}
	}
	return out
}

type mockPaymentMethodRepo struct {
	mu      sync.Mutex
	methods []entity.PaymentMethod
}

func newMockPaymentMethodRepo() *mockPaymentMethodRepo {
	return &mockPaymentMethodRepo{
		methods: []entity.PaymentMethod{
			{ID: uuid.New(), Name: "cash", Active: true},
			{ID: uuid.New(), Name: "card", Active: true},
			{ID: uuid.New(), Name: "cheque", RequiresReference: true, Active: true},
		},
	}
}

func (m *mockPaymentMethodRepo) Create(ctx context.Context, method *entity.PaymentMethod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if method.ID == uuid.Nil {
		method.ID = uuid.New()
	}
	m.methods = append(m.methods, *method)
	return nil
}

func (m *mockPaymentMethodRepo) GetByName(ctx context.Context, name string) (*entity.PaymentMethod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.methods {
		if m.methods[i].Name == name {
			copied := m.methods[i]
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockPaymentMethodRepo) ListActive(ctx context.Context) ([]entity.PaymentMethod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.PaymentMethod
	for _, method := range m.methods {
		if method.Active {
			out = append(out, method)
		}
	}
	return out, nil
}

func (m *mockPaymentMethodRepo) List(ctx context.Context) ([]entity.PaymentMethod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.PaymentMethod(nil), m.methods...), nil
}

func (m *mockPaymentMethodRepo) Update(ctx context.Context, method *entity.PaymentMethod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.methods {
		if m.methods[i].ID == method.ID {
			m.methods[i] = *method
		}
	}
	return nil
}

func (m *mockPaymentMethodRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.methods {
		if m.methods[i].ID == id {
			m.methods = append(m.methods[:i], m.methods[i+1:]...)
			break
		}
	}
	return nil
}

type mockCourierRepo struct {
	mu       sync.Mutex
	couriers map[uuid.UUID]*entity.Courier
}

func newMockCourierRepo() *mockCourierRepo {
	return &mockCourierRepo{couriers: make(map[uuid.UUID]*entity.Courier)}
}

func (m *mockCourierRepo) Create(ctx context.Context, courier *entity.Courier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if courier.ID == uuid.Nil {
		courier.ID = uuid.New()
	}
	stored := *courier
	m.couriers[courier.ID] = &stored
	return nil
}

func (m *mockCourierRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Courier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.couriers[id]
	if !ok {
		return nil, nil
	}
	copied := *stored
	return &copied, nil
}

func (m *mockCourierRepo) List(ctx context.Context) ([]entity.Courier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Courier, 0, len(m.couriers))
	for _, c := range m.couriers {
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockCourierRepo) Update(ctx context.Context, courier *entity.Courier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *courier
	m.couriers[courier.ID] = &stored
	return nil
}

func (m *mockCourierRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.couriers, id)
	return nil
}

type mockReturnRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*entity.ReturnRecord
}

func newMockReturnRepo() *mockReturnRepo {
	return &mockReturnRepo{records: make(map[uuid.UUID]*entity.ReturnRecord)}
}

func (m *mockReturnRepo) Create(ctx context.Context, record *entity.ReturnRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	for i := range record.Items {
		if record.Items[i].ID == uuid.Nil {
			record.Items[i].ID = uuid.New()
		}
		record.Items[i].ReturnID = record.ID
	}
	stored := *record
	m.records[record.ID] = &stored
	return nil
}

func (m *mockReturnRepo) GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.ReturnRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	copied := *stored
	copied.Items = append([]entity.ReturnItem(nil), stored.Items...)
	return &copied, nil
}

func (m *mockReturnRepo) List(ctx context.Context, params *repository.ReturnFilterParams) ([]entity.ReturnRecord, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.ReturnRecord, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (m *mockReturnRepo) SumRefundsByInvoice(ctx context.Context, invoiceID uuid.UUID) (repository.RefundTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	totals := repository.RefundTotals{Total: decimal.Zero, Delivery: decimal.Zero}
	for _, r := range m.records {
		if r.InvoiceID == invoiceID {
			totals.Total = totals.Total.Add(r.TotalRefund)
			totals.Delivery = totals.Delivery.Add(r.DeliveryRefund)
		}
	}
	return totals, nil
}

func (m *mockReturnRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

type mockRepairRepo struct {
	mu      sync.Mutex
	repairs map[uuid.UUID]*entity.Repair
}

func newMockRepairRepo() *mockRepairRepo {
	return &mockRepairRepo{repairs: make(map[uuid.UUID]*entity.Repair)}
}

func (m *mockRepairRepo) Create(ctx context.Context, repair *entity.Repair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if repair.ID == uuid.Nil {
		repair.ID = uuid.New()
	}
	stored := *repair
	m.repairs[repair.ID] = &stored
	return nil
}

func (m *mockRepairRepo) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Repair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.repairs[id]
	if !ok {
		return nil, nil
	}
	copied := *stored
	copied.Items = append([]entity.RepairItem(nil), stored.Items...)
	return &copied, nil
}

func (m *mockRepairRepo) Update(ctx context.Context, repair *entity.Repair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stored, ok := m.repairs[repair.ID]; ok {
		items := stored.Items
		copied := *repair
		copied.Items = items
		m.repairs[repair.ID] = &copied
	}
	return nil
}

func (m *mockRepairRepo) List(ctx context.Context, params *repository.RepairFilterParams) ([]entity.Repair, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Repair, 0, len(m.repairs))
	for _, r := range m.repairs {
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (m *mockRepairRepo) AddItem(ctx context.Context, item *entity.RepairItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if repair, ok := m.repairs[item.RepairID]; ok {
		repair.Items = append(repair.Items, *item)
	}
	return nil
}

type mockDamageLogRepo struct {
	mu   sync.Mutex
	logs map[uuid.UUID]*entity.DamageLog
}

func newMockDamageLogRepo() *mockDamageLogRepo {
	return &mockDamageLogRepo{logs: make(map[uuid.UUID]*entity.DamageLog)}
}

func (m *mockDamageLogRepo) Create(ctx context.Context, log *entity.DamageLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	stored := *log
	m.logs[log.ID] = &stored
	return nil
}

func (m *mockDamageLogRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.DamageLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.logs[id]
	if !ok {
		return nil, nil
	}
	copied := *stored
	return &copied, nil
}

func (m *mockDamageLogRepo) Update(ctx context.Context, log *entity.DamageLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *log
	m.logs[log.ID] = &stored
	return nil
}

func (m *mockDamageLogRepo) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.DamageLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.DamageLog, 0, len(m.logs))
	for _, l := range m.logs {
		out = append(out, *l)
	}
	return out, int64(len(out)), nil
}

func (m *mockDamageLogRepo) all() []entity.DamageLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.DamageLog, 0, len(m.logs))
	for _, l := range m.logs {
		out = append(out, *l)
	}
	return out
}

// fixture wires every service against the in-memory repositories
type fixture struct {
	customers *mockCustomerRepo
	products  *mockProductRepo
	invoices  *mockInvoiceRepo
	txns      *mockTransactionRepo
	methods   *mockPaymentMethodRepo
	couriers  *mockCourierRepo
	returns   *mockReturnRepo
	repairs   *mockRepairRepo
	damage    *mockDamageLogRepo

	sales      *SaleService
	returnsSvc *ReturnService
	repairSvc  *RepairService
	ledger     *LedgerService
	custSvc    *CustomerService
}

func newFixture() *fixture {
	f := &fixture{
		customers: newMockCustomerRepo(),
		products:  newMockProductRepo(),
		invoices:  newMockInvoiceRepo(),
		methods:   newMockPaymentMethodRepo(),
		couriers:  newMockCourierRepo(),
		returns:   newMockReturnRepo(),
		repairs:   newMockRepairRepo(),
		damage:    newMockDamageLogRepo(),
	}
	f.txns = newMockTransactionRepo(f.customers)

	cfg := &config.SettlementConfig{
		Currency:                "USD",
		RefundRemainderToCredit: true,
		InvoiceDueDays:          30,
	}
	bus := events.NewBus()

	f.sales = NewSaleService(f.invoices, f.customers, f.products, f.txns, f.methods, f.couriers, cfg, bus)
	f.returnsSvc = NewReturnService(f.returns, f.invoices, f.products, f.txns, cfg, bus)
	f.repairSvc = NewRepairService(f.repairs, f.damage, f.products, f.customers, f.txns, f.sales, bus)
	f.ledger = NewLedgerService(f.txns, f.customers)
	f.custSvc = NewCustomerService(f.customers, f.txns)
	return f
}

func (f *fixture) addCustomer(name, balance string) *entity.Customer {
	c := &entity.Customer{Name: name, Balance: mustDecimal(balance)}
	_ = f.customers.Create(context.Background(), c)
	return c
}

func (f *fixture) addProduct(name string, price string, quantity int) *entity.Product {
	p := &entity.Product{
		Name:     name,
		Code:     "SKU-" + uuid.NewString()[:8],
		Price:    mustDecimal(price),
		Quantity: quantity,
		Unit:     "pcs",
	}
	_ = f.products.Create(context.Background(), p)
	return p
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

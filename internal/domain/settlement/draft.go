package settlement

import (
	"errors"
	"fmt"

	"github.com/ledgerpos/settlement-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// Draft-editing errors
var (
	ErrLastPaymentLine = errors.New("the last payment line cannot be removed")
	ErrLineOutOfRange  = errors.New("line index out of range")
)

// SaleDraft is the uncommitted state of a sale being edited at the
// register. It is plain data; Quote derives the full settlement from it on
// every edit rather than patching totals incrementally. Nothing here
// touches stock or the ledger; committing a draft is the service layer's
// job.
type SaleDraft struct {
	SaleType        enum.SaleType
	Lines           []CartLine
	OverallDiscount Discount
	Delivery        Delivery
	RequestedCredit decimal.Decimal
	SettleBalance   bool
	Payments        []PaymentLine
}

// NewSaleDraft starts an empty draft with a single blank cash payment line,
// mirroring the register's starting state.
func NewSaleDraft(saleType enum.SaleType) *SaleDraft {
	return &SaleDraft{
		SaleType: saleType,
		Payments: []PaymentLine{{Method: "cash", Amount: decimal.Zero}},
	}
}

// AddLine appends a cart line
func (d *SaleDraft) AddLine(line CartLine) {
	d.Lines = append(d.Lines, line)
}

// RemoveLine deletes a cart line by index
func (d *SaleDraft) RemoveLine(i int) error {
	if i < 0 || i >= len(d.Lines) {
		return ErrLineOutOfRange
	}
	d.Lines = append(d.Lines[:i], d.Lines[i+1:]...)
	return nil
}

// SetLineDiscount parses and sets the discount token on a line
func (d *SaleDraft) SetLineDiscount(i int, token string) error {
	if i < 0 || i >= len(d.Lines) {
		return ErrLineOutOfRange
	}
	disc, err := ParseDiscount(token)
	if err != nil {
		return err
	}
	d.Lines[i].Discount = disc
	return nil
}

// SetRequestedCredit records the operator's credit entry. The value is
// clamped at quote time against the authoritative balance, so storing an
// out-of-range number here is harmless.
func (d *SaleDraft) SetRequestedCredit(amount decimal.Decimal) {
	d.RequestedCredit = amount
}

// AddPayment appends a payment line. Each method gets at most one line, the
// same rule SplitPayments enforces at quote time.
func (d *SaleDraft) AddPayment(line PaymentLine) error {
	for _, p := range d.Payments {
		if p.Method == line.Method {
			return fmt.Errorf("%w: %s", ErrDuplicateMethod, line.Method)
		}
	}
	d.Payments = append(d.Payments, line)
	return nil
}

// RemovePayment deletes a payment line by index. The last remaining line
// stays put; the register always shows at least one.
func (d *SaleDraft) RemovePayment(i int) error {
	if len(d.Payments) <= 1 {
		return ErrLastPaymentLine
	}
	if i < 0 || i >= len(d.Payments) {
		return ErrLineOutOfRange
	}
	d.Payments = append(d.Payments[:i], d.Payments[i+1:]...)
	return nil
}

// Quote is a fully derived settlement for a draft: cart breakdown, credit
// allocation and payment split, computed against a given customer balance.
type Quote struct {
	Cart    CartResult       `json:"cart"`
	Credit  CreditAllocation `json:"credit"`
	Payment SplitResult      `json:"payment"`
}

// Quote recomputes the entire settlement for the draft. balance is the
// customer's signed balance (zero for walk-ins); methods are the configured
// payment methods.
func (d *SaleDraft) Quote(balance decimal.Decimal, methods map[string]MethodRule) (Quote, error) {
	cart, err := ComputeCart(d.Lines, d.OverallDiscount, d.Delivery)
	if err != nil {
		return Quote{}, err
	}

	credit, err := AllocateCredit(balance, cart.Total, d.RequestedCredit, d.SettleBalance, d.SaleType.RequiresFullSettlement())
	if err != nil {
		return Quote{}, err
	}

	split, err := SplitPayments(credit.FinalTotal, d.Payments, d.SaleType, methods)
	if err != nil {
		return Quote{}, err
	}

	return Quote{Cart: cart, Credit: credit, Payment: split}, nil
}

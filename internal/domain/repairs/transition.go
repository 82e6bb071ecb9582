// Package repairs holds the pure rules of the repair billing lifecycle:
// which status moves are legal, what each terminal move bills, and how the
// warranty gate pins the repair fee.
package repairs

import (
	"errors"
	"strings"

	"github.com/ledgerpos/settlement-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// Transition errors
var (
	ErrIllegalTransition  = errors.New("illegal repair status transition")
	ErrTerminalState      = errors.New("repair is in a terminal state")
	ErrWarrantyFee        = errors.New("repair fee must be zero while under warranty")
	ErrVoidReasonRequired = errors.New("voiding a warranty requires a reason")
	ErrVoidNotApplicable  = errors.New("warranty can only be voided while in progress and still active")
)

// BillingOutcome says what a transition does to money and stock
type BillingOutcome int

const (
	// BillNothing: the transition has no billing effect
	BillNothing BillingOutcome = 0
	// BillInvoice: generate an invoice (parts + fee, or a replacement
	// product) and push it through the normal sale pipeline
	BillInvoice BillingOutcome = 1
	// BillStoreCredit: post a credit transaction directly, no invoice
	BillStoreCredit BillingOutcome = 2
	// RestockItem: return the unit to saleable stock (damage-log repairs)
	RestockItem BillingOutcome = 3
	// LogDamage: record a damage log entry for the unrepairable unit
	LogDamage BillingOutcome = 4
)

// legal transitions; terminal states have no outgoing edges
var transitions = map[enum.RepairStatus][]enum.RepairStatus{
	enum.RepairStatusReceived:   {enum.RepairStatusInProgress},
	enum.RepairStatusInProgress: {enum.RepairStatusRepaired, enum.RepairStatusUnrepairable, enum.RepairStatusCompleted},
	enum.RepairStatusUnrepairable: {
		enum.RepairStatusCompletedReplaced,
		enum.RepairStatusCompletedCredit,
	},
}

// CanTransition reports whether from -> to is a legal move
func CanTransition(from, to enum.RepairStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// State is the slice of a repair the transition rules need
type State struct {
	Status      enum.RepairStatus
	IsWarranty  bool
	FromDamageLog bool
	RepairFee   decimal.Decimal
}

// Outcome resolves what a legal transition entails. ErrIllegalTransition or
// ErrTerminalState is returned for moves the machine does not allow;
// ErrWarrantyFee when completing under warranty with a non-zero fee.
func Outcome(s State, to enum.RepairStatus) (BillingOutcome, error) {
	if s.Status.Terminal() {
		return BillNothing, ErrTerminalState
	}
	if !CanTransition(s.Status, to) {
		return BillNothing, ErrIllegalTransition
	}

	switch to {
	case enum.RepairStatusInProgress:
		return BillNothing, nil

	case enum.RepairStatusRepaired:
		// Only damage-log repairs end at Repaired: the unit goes back to
		// sellable stock and billing is never touched.
		if !s.FromDamageLog {
			return BillNothing, ErrIllegalTransition
		}
		return RestockItem, nil

	case enum.RepairStatusCompleted:
		// Damage-log repairs never bill; they end at Repaired or
		// Unrepairable only.
		if s.FromDamageLog {
			return BillNothing, ErrIllegalTransition
		}
		if s.IsWarranty && !s.RepairFee.IsZero() {
			return BillNothing, ErrWarrantyFee
		}
		return BillInvoice, nil

	case enum.RepairStatusUnrepairable:
		if s.FromDamageLog {
			// Internal damage-log repair: no customer-facing billing.
			return BillNothing, nil
		}
		return LogDamage, nil

	case enum.RepairStatusCompletedReplaced:
		if s.FromDamageLog {
			return BillNothing, ErrIllegalTransition
		}
		return BillInvoice, nil

	case enum.RepairStatusCompletedCredit:
		if s.FromDamageLog {
			return BillNothing, ErrIllegalTransition
		}
		return BillStoreCredit, nil
	}

	return BillNothing, ErrIllegalTransition
}

// EffectiveFee returns the fee a completion may bill: zero while the
// warranty gate is active, the recorded fee otherwise.
func EffectiveFee(s State) decimal.Decimal {
	if s.IsWarranty {
		return decimal.Zero
	}
	return s.RepairFee
}

// ReplacementPrice returns the price a replacement invoice line carries:
// forced to zero under warranty, otherwise the operator-editable price
// (defaulting to the replacement product's price upstream).
func ReplacementPrice(isWarranty bool, price decimal.Decimal) decimal.Decimal {
	if isWarranty {
		return decimal.Zero
	}
	return price
}

// ValidateVoid checks a warranty void request. Voiding is one-way, needs a
// reason, and is only possible while the repair is In Progress with the
// warranty still active.
func ValidateVoid(s State, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return ErrVoidReasonRequired
	}
	if s.Status != enum.RepairStatusInProgress || !s.IsWarranty {
		return ErrVoidNotApplicable
	}
	return nil
}

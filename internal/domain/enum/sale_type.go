package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// SaleType distinguishes an immediate-payment walk-in receipt from a
// deferred invoice. Receipts must settle in full at commit; invoices may
// carry an outstanding amount.
type SaleType int

const (
	SaleTypeReceipt SaleType = 0
	SaleTypeInvoice SaleType = 1
)

func (s SaleType) String() string {
	return [...]string{"Receipt", "Invoice"}[s]
}

// RequiresFullSettlement reports whether amountDue must be zero at commit
func (s SaleType) RequiresFullSettlement() bool {
	return s == SaleTypeReceipt
}

// AllowsChange reports whether change can be handed back on overpayment
func (s SaleType) AllowsChange() bool {
	return s == SaleTypeReceipt
}

func (s SaleType) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *SaleType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = SaleType(i)
		return nil
	}
	switch str {
	case "Receipt":
		*s = SaleTypeReceipt
	case "Invoice":
		*s = SaleTypeInvoice
	}
	return nil
}

func (s SaleType) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *SaleType) Scan(value interface{}) error {
	if value == nil {
		*s = SaleTypeReceipt
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = SaleType(v)
	case int:
		*s = SaleType(v)
	}
	return nil
}

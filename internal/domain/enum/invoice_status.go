package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// InvoiceStatus represents the payment status of an invoice
type InvoiceStatus int

const (
	InvoiceStatusDraft         InvoiceStatus = 0
	InvoiceStatusSent          InvoiceStatus = 1
	InvoiceStatusPaid          InvoiceStatus = 2
	InvoiceStatusPartiallyPaid InvoiceStatus = 3
	InvoiceStatusOverdue       InvoiceStatus = 4
)

func (s InvoiceStatus) String() string {
	return [...]string{"Draft", "Sent", "Paid", "Partially Paid", "Overdue"}[s]
}

// Outstanding reports whether the invoice still carries an unpaid amount
func (s InvoiceStatus) Outstanding() bool {
	return s == InvoiceStatusSent || s == InvoiceStatusPartiallyPaid || s == InvoiceStatusOverdue
}

func (s InvoiceStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *InvoiceStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = InvoiceStatus(i)
		return nil
	}
	switch str {
	case "Draft":
		*s = InvoiceStatusDraft
	case "Sent":
		*s = InvoiceStatusSent
	case "Paid":
		*s = InvoiceStatusPaid
	case "Partially Paid":
		*s = InvoiceStatusPartiallyPaid
	case "Overdue":
		*s = InvoiceStatusOverdue
	}
	return nil
}

func (s InvoiceStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *InvoiceStatus) Scan(value interface{}) error {
	if value == nil {
		*s = InvoiceStatusDraft
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = InvoiceStatus(v)
	case int:
		*s = InvoiceStatus(v)
	}
	return nil
}

package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// TransactionType distinguishes the direction of a ledger posting.
// Credit moves the customer balance toward store credit owed to the
// customer; debit moves it toward an amount the customer owes.
type TransactionType int

const (
	TransactionCredit TransactionType = 0
	TransactionDebit  TransactionType = 1
)

func (t TransactionType) String() string {
	return [...]string{"Credit", "Debit"}[t]
}

// Sign returns +1 for credit and -1 for debit, the factor applied to the
// (always positive) transaction amount when summing a customer's ledger.
func (t TransactionType) Sign() int {
	if t == TransactionDebit {
		return -1
	}
	return 1
}

func (t TransactionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TransactionType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = TransactionType(i)
		return nil
	}
	switch str {
	case "Credit":
		*t = TransactionCredit
	case "Debit":
		*t = TransactionDebit
	}
	return nil
}

func (t TransactionType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *TransactionType) Scan(value interface{}) error {
	if value == nil {
		*t = TransactionCredit
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = TransactionType(v)
	case int:
		*t = TransactionType(v)
	}
	return nil
}

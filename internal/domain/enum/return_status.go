package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// ReturnStatus tracks how much of an invoice has been returned
type ReturnStatus int

const (
	ReturnStatusNone      ReturnStatus = 0
	ReturnStatusPartially ReturnStatus = 1
	ReturnStatusFully     ReturnStatus = 2
)

func (s ReturnStatus) String() string {
	return [...]string{"None", "Partially Returned", "Fully Returned"}[s]
}

func (s ReturnStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ReturnStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = ReturnStatus(i)
		return nil
	}
	switch str {
	case "None":
		*s = ReturnStatusNone
	case "Partially Returned":
		*s = ReturnStatusPartially
	case "Fully Returned":
		*s = ReturnStatusFully
	}
	return nil
}

func (s ReturnStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *ReturnStatus) Scan(value interface{}) error {
	if value == nil {
		*s = ReturnStatusNone
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = ReturnStatus(v)
	case int:
		*s = ReturnStatus(v)
	}
	return nil
}

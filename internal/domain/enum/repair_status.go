package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// RepairStatus represents where a repair job sits in its lifecycle
type RepairStatus int

const (
	RepairStatusReceived          RepairStatus = 0
	RepairStatusInProgress        RepairStatus = 1
	RepairStatusRepaired          RepairStatus = 2
	RepairStatusUnrepairable      RepairStatus = 3
	RepairStatusCompleted         RepairStatus = 4
	RepairStatusCompletedReplaced RepairStatus = 5
	RepairStatusCompletedCredit   RepairStatus = 6
)

func (s RepairStatus) String() string {
	return [...]string{
		"Received",
		"In Progress",
		"Repaired",
		"Unrepairable",
		"Completed",
		"Completed (Replaced)",
		"Completed (Credit)",
	}[s]
}

// Terminal reports whether the status is final; terminal states are never
// left once reached.
func (s RepairStatus) Terminal() bool {
	switch s {
	case RepairStatusRepaired, RepairStatusCompleted, RepairStatusCompletedReplaced, RepairStatusCompletedCredit:
		return true
	}
	return false
}

func (s RepairStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *RepairStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = RepairStatus(i)
		return nil
	}
	switch str {
	case "Received":
		*s = RepairStatusReceived
	case "In Progress":
		*s = RepairStatusInProgress
	case "Repaired":
		*s = RepairStatusRepaired
	case "Unrepairable":
		*s = RepairStatusUnrepairable
	case "Completed":
		*s = RepairStatusCompleted
	case "Completed (Replaced)":
		*s = RepairStatusCompletedReplaced
	case "Completed (Credit)":
		*s = RepairStatusCompletedCredit
	}
	return nil
}

func (s RepairStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *RepairStatus) Scan(value interface{}) error {
	if value == nil {
		*s = RepairStatusReceived
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = RepairStatus(v)
	case int:
		*s = RepairStatus(v)
	}
	return nil
}

package data

import "encoding/json"

// EmployeePartial carries the mutable fields of an employee; the id is
// immutable and never part of an update.
type EmployeePartial struct {
	Login     *string  `json:"login,omitempty"`
	Name      *string  `json:"name,omitempty"`
	Salary    *float64 `json:"salary,omitempty"`
	StartDate *Date    `json:"startDate,omitempty"`
}

func (e *EmployeePartial) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

func (e *EmployeePartial) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, e)
}

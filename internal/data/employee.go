package data

import "encoding/json"

type Employee struct {
	Id             string  `json:"id"`
	Login          string  `json:"login"`
	Name           string  `json:"name"`
	Salary         float64 `json:"salary"`
	StartDate      Date    `json:"startDate"`
	LastModifiedAt int64   `json:"-"` //maintained by the store, exposed for sorting only
}

func (e *Employee) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

func (e *Employee) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, e)
}

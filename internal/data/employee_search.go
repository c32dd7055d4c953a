package data

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// EmployeeSearch describes a salary-range filtered, sorted and
// optionally paged listing; zero values fall back to the documented
// defaults (salary range [0, 4000.00), sort "id-asc", unpaged).
type EmployeeSearch struct {
	MinSalary *float64 `json:"min_salary,omitempty"`
	MaxSalary *float64 `json:"max_salary,omitempty"`
	Offset    int      `json:"offset,omitempty"`
	Limit     int      `json:"limit,omitempty"`
	Sort      string   `json:"sort,omitempty"`
}

func (e *EmployeeSearch) WithDefaults() EmployeeSearch {
	search := *e
	if search.MinSalary == nil {
		minSalary := DefaultMinSalary
		search.MinSalary = &minSalary
	}
	if search.MaxSalary == nil {
		maxSalary := DefaultMaxSalary
		search.MaxSalary = &maxSalary
	}
	if strings.TrimSpace(search.Sort) == "" {
		search.Sort = DefaultSort
	}
	return search
}

func (e *EmployeeSearch) ToParams() url.Values {
	params := make(url.Values)
	if e.MinSalary != nil {
		params.Set(ParameterMinSalary, strconv.FormatFloat(*e.MinSalary, 'f', -1, 64))
	}
	if e.MaxSalary != nil {
		params.Set(ParameterMaxSalary, strconv.FormatFloat(*e.MaxSalary, 'f', -1, 64))
	}
	if e.Offset > 0 {
		params.Set(ParameterOffset, strconv.Itoa(e.Offset))
	}
	if e.Limit > 0 {
		params.Set(ParameterLimit, strconv.Itoa(e.Limit))
	}
	if e.Sort != "" {
		params.Set(ParameterSort, e.Sort)
	}
	return params
}

// FromParams rejects malformed numeric parameters rather than
// silently falling back to the defaults.
func (e *EmployeeSearch) FromParams(params url.Values) error {
	for key, values := range params {
		if len(values) <= 0 {
			continue
		}
		value := values[len(values)-1]
		switch key {
		case ParameterMinSalary:
			minSalary, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return NewBadInputError("%s should be a number, but is %s", key, value)
			}
			e.MinSalary = &minSalary
		case ParameterMaxSalary:
			maxSalary, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return NewBadInputError("%s should be a number, but is %s", key, value)
			}
			e.MaxSalary = &maxSalary
		case ParameterOffset:
			offset, err := strconv.Atoi(value)
			if err != nil {
				return NewBadInputError("%s should be a number, but is %s", key, value)
			}
			e.Offset = offset
		case ParameterLimit:
			limit, err := strconv.Atoi(value)
			if err != nil {
				return NewBadInputError("%s should be a number, but is %s", key, value)
			}
			e.Limit = limit
		case ParameterSort:
			e.Sort = value
		}
	}
	return nil
}

func (e *EmployeeSearch) ToKey() (string, error) {
	bytes, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Package upload parses one csv upload into a batch of candidate
// employees: case-insensitive header, trimmed fields, '#' comment
// lines skipped, per-field validation and intra-batch duplicate
// detection. A batch either converts completely or not at all.
package upload

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/antonio-alexander/go-employee-directory/internal/data"
	"github.com/antonio-alexander/go-employee-directory/internal/validate"
)

const (
	columnId        string = "id"
	columnLogin     string = "login"
	columnName      string = "name"
	columnSalary    string = "salary"
	columnStartDate string = "startdate"
)

var columns = []string{columnId, columnLogin, columnName, columnSalary, columnStartDate}

// Parse reads csvBytes as UTF-8 csv and returns the candidate
// employees in input order. An empty or comment-only payload is a
// valid empty batch.
func Parse(csvBytes []byte) ([]data.Employee, error) {
	reader := csv.NewReader(bytes.NewReader(csvBytes))
	reader.Comment = '#'
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	switch {
	case err == io.EOF:
		return nil, nil
	case err != nil:
		return nil, data.NewBadInputError("unable to parse csv header: %s", err)
	}
	indices, err := columnIndices(header)
	if err != nil {
		return nil, err
	}
	var employees []data.Employee
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, data.NewBadInputError("unable to parse csv: %s", err)
		}
		employee, err := toEmployee(record, indices)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *employee)
	}
	if err := checkForDuplicateIds(employees); err != nil {
		return nil, err
	}
	if err := checkForDuplicateLogins(employees); err != nil {
		return nil, err
	}
	return employees, nil
}

func columnIndices(header []string) (map[string]int, error) {
	indices := make(map[string]int)
	for i, name := range header {
		indices[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, column := range columns {
		if _, ok := indices[column]; !ok {
			return nil, data.NewBadInputError("csv header missing column %s", column)
		}
	}
	return indices, nil
}

func field(record []string, indices map[string]int, column string) *string {
	index := indices[column]
	if index >= len(record) {
		return nil
	}
	value := strings.TrimSpace(record[index])
	return &value
}

func toEmployee(record []string, indices map[string]int) (*data.Employee, error) {
	id, err := validate.Id(field(record, indices, columnId))
	if err != nil {
		return nil, err
	}
	login, err := validate.Login(field(record, indices, columnLogin))
	if err != nil {
		return nil, err
	}
	name, err := validate.Name(field(record, indices, columnName))
	if err != nil {
		return nil, err
	}
	salary, err := validate.Salary(field(record, indices, columnSalary))
	if err != nil {
		return nil, err
	}
	startDate, err := validate.StartDate(field(record, indices, columnStartDate))
	if err != nil {
		return nil, err
	}
	return &data.Employee{
		Id:        id,
		Login:     login,
		Name:      name,
		Salary:    salary,
		StartDate: startDate,
	}, nil
}

// duplicateKeys returns each key that occurs more than once, reported
// once, in first-occurrence input order.
func duplicateKeys(keys []string) []string {
	var duplicates []string

	seen := make(map[string]int)
	for _, key := range keys {
		seen[key]++
	}
	reported := make(map[string]struct{})
	for _, key := range keys {
		if seen[key] <= 1 {
			continue
		}
		if _, ok := reported[key]; ok {
			continue
		}
		reported[key] = struct{}{}
		duplicates = append(duplicates, key)
	}
	return duplicates
}

func checkForDuplicateIds(employees []data.Employee) error {
	ids := make([]string, 0, len(employees))
	for _, employee := range employees {
		ids = append(ids, employee.Id)
	}
	if duplicates := duplicateKeys(ids); len(duplicates) > 0 {
		return data.NewDuplicateDataError("Duplicate ids detected", duplicates...)
	}
	return nil
}

func checkForDuplicateLogins(employees []data.Employee) error {
	logins := make([]string, 0, len(employees))
	for _, employee := range employees {
		logins = append(logins, employee.Login)
	}
	if duplicates := duplicateKeys(logins); len(duplicates) > 0 {
		return data.NewDuplicateDataError("Duplicate login ids detected", duplicates...)
	}
	return nil
}

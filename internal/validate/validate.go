// Package validate converts and validates raw employee fields one at a
// time; every function is pure and every failure is reported, never
// silently defaulted.
package validate

import (
	"mime"
	"regexp"
	"strconv"
	"strings"

	"github.com/antonio-alexander/go-employee-directory/internal/data"
)

var alphanumeric = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// SortFields lists the employee fields a sort specification may
// reference, in declaration order.
func SortFields() []string {
	return []string{"id", "login", "name", "salary", "startDate", "lastModifiedAt"}
}

func Id(raw *string) (string, error) {
	if raw == nil {
		return "", data.NewInvalidFieldError("id cannot be null")
	}
	if !alphanumeric.MatchString(*raw) {
		return "", data.NewInvalidFieldError("Invalid id %s, only alphanumeric values are allowed for id", *raw)
	}
	return *raw, nil
}

func Login(raw *string) (string, error) {
	if raw == nil {
		return "", data.NewInvalidFieldError("login cannot be null")
	}
	if !alphanumeric.MatchString(*raw) {
		return "", data.NewInvalidFieldError("Invalid login %s, only alphanumeric values are allowed for login", *raw)
	}
	return *raw, nil
}

// Name accepts any non-null string, the empty string included.
func Name(raw *string) (string, error) {
	if raw == nil {
		return "", data.NewInvalidFieldError("name cannot be null")
	}
	return *raw, nil
}

func Salary(raw *string) (float64, error) {
	if raw == nil {
		return 0, data.NewInvalidFieldError("salary cannot be null")
	}
	salary, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
	if err != nil {
		return 0, data.NewInvalidFieldError("salary should be a number, but is %s", *raw)
	}
	if err := SalaryValue(salary); err != nil {
		return 0, err
	}
	return salary, nil
}

func SalaryValue(salary float64) error {
	if salary < 0 {
		return data.NewInvalidFieldError("Invalid salary %s, salary should be greater than 0",
			strconv.FormatFloat(salary, 'f', -1, 64))
	}
	return nil
}

func StartDate(raw *string) (data.Date, error) {
	if raw == nil {
		return data.Date{}, data.NewInvalidFieldError("startDate cannot be null")
	}
	return data.ParseDate(*raw)
}

// SortField validates a single sort token's field name against the
// declared field set.
func SortField(field string, fields []string) error {
	if strings.TrimSpace(field) == "" {
		return data.NewBadInputError("Sort field cannot be empty with just direction specified")
	}
	for _, f := range fields {
		if f == field {
			return nil
		}
	}
	return data.NewBadInputError("Can sort based on one of the following columns [%s]",
		strings.Join(fields, ", "))
}

// ContentType checks that an upload's declared content type indicates
// csv content.
func ContentType(contentType string) error {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(contentType)
	}
	if !strings.EqualFold(mediaType, data.ContentTypeCsv) {
		return data.NewFileFormatError("The input file provided is not of a valid format. Please upload a csv file only")
	}
	return nil
}

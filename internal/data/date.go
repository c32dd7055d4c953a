package data

import (
	"strings"
	"time"
)

const (
	DateFormat    string = "2006-01-02" //format produced on output
	DateFormatAlt string = "02-Jan-06"  //alternate format accepted on input
)

// Date is a calendar date without a time component; it accepts
// either yyyy-MM-dd or dd-MMM-yy on input and always serializes
// as yyyy-MM-dd.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		if t, err = time.Parse(DateFormatAlt, s); err != nil {
			return Date{}, NewInvalidFieldError("Invalid date format, startDate can only be in the format yyyy-MM-dd or dd-MMM-yy")
		}
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateFormat)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateFormat) + `"`), nil
}

func (d *Date) UnmarshalJSON(bytes []byte) error {
	s := strings.Trim(string(bytes), `"`)
	date, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = date
	return nil
}

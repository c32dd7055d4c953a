package sql

import (
	goerrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/antonio-alexander/go-employee-directory/internal/data"
	"github.com/antonio-alexander/go-employee-directory/internal/query"

	"github.com/go-sql-driver/mysql"
)

const mysqlErrDuplicateEntry uint16 = 1062

// sortColumns maps the exposed sort field names onto real columns;
// ordering is only ever built from this map, never from raw input.
var sortColumns = map[string]string{
	"id":             "id",
	"login":          "login",
	"name":           "name",
	"salary":         "salary",
	"startDate":      "start_date",
	"lastModifiedAt": "last_modified_at",
}

func employeeCriteria(search data.EmployeeSearch) (string, []any) {
	var args []any
	var criteria []string

	if search.MinSalary != nil {
		args = append(args, *search.MinSalary)
		criteria = append(criteria, "salary >= ?")
	}
	if search.MaxSalary != nil {
		args = append(args, *search.MaxSalary)
		criteria = append(criteria, "salary < ?")
	}
	if len(criteria) <= 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(criteria, " AND "), args
}

func pageSuffix(page *query.PageRequest) (string, error) {
	if page == nil {
		return "", nil
	}
	var suffix string

	if len(page.Orders) > 0 {
		orderings := make([]string, 0, len(page.Orders))
		for _, order := range page.Orders {
			column, ok := sortColumns[order.Field]
			if !ok {
				return "", data.NewBadInputError("invalid sort field: %s", order.Field)
			}
			ordering := column
			if order.Direction == query.Descending {
				ordering += " DESC"
			}
			orderings = append(orderings, ordering)
		}
		suffix += " ORDER BY " + strings.Join(orderings, ", ")
	}
	if !page.Unpaged {
		suffix += fmt.Sprintf(" LIMIT %d OFFSET %d", page.Limit, page.Offset)
	}
	return suffix, nil
}

func employeeScan(scanFx func(...any) error) (*data.Employee, error) {
	var startDate, lastModifiedAt time.Time

	employee := new(data.Employee)
	if err := scanFx(
		&employee.Id,
		&employee.Login,
		&employee.Name,
		&employee.Salary,
		&startDate,
		&lastModifiedAt,
	); err != nil {
		return nil, err
	}
	employee.StartDate = data.Date{Time: startDate.UTC()}
	employee.LastModifiedAt = lastModifiedAt.Unix()
	return employee, nil
}

// translateError maps uniqueness violations the store detects at write
// time into the taxonomy; a pre-check can pass and the insert still
// lose the race.
func translateError(err error) error {
	var mysqlErr *mysql.MySQLError

	if goerrors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry {
		if strings.Contains(mysqlErr.Message, "login") {
			return data.NewBadInputError("Login id is not unique")
		}
		return data.NewBadInputError("Employee ID already exists")
	}
	return err
}

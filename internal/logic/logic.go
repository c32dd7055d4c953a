package logic

import (
	"context"
	"strconv"
	"sync"

	"github.com/antonio-alexander/go-employee-directory/internal"
	"github.com/antonio-alexander/go-employee-directory/internal/cache"
	"github.com/antonio-alexander/go-employee-directory/internal/data"
	"github.com/antonio-alexander/go-employee-directory/internal/query"
	"github.com/antonio-alexander/go-employee-directory/internal/sql"
	"github.com/antonio-alexander/go-employee-directory/internal/upload"
	"github.com/antonio-alexander/go-employee-directory/internal/utilities"
	"github.com/antonio-alexander/go-employee-directory/internal/validate"
)

type Logic interface {
	EmployeeCreate(ctx context.Context, employee data.Employee) (*data.Employee, error)
	EmployeeRead(ctx context.Context, id string) (*data.Employee, error)
	EmployeesSearch(ctx context.Context, search data.EmployeeSearch) ([]*data.Employee, error)
	EmployeeUpdate(ctx context.Context, id string, employeePartial data.EmployeePartial) (*data.Employee, error)
	EmployeeDelete(ctx context.Context, id string) error
	EmployeesUpload(ctx context.Context, contentType string, csvBytes []byte) (int, error)
}

type logic struct {
	sync.RWMutex
	sql     sql.Sql
	cache   cache.Cache
	builder *query.Builder
	config  struct {
		cacheEnabled         bool
		mutateDisabled       bool
		uniqueImportDisabled bool
	}
	utilities.Logger
	utilities.Counter
}

func NewLogic(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Logic
} {
	l := &logic{builder: query.NewBuilder(validate.SortFields()...)}
	for _, parameter := range parameters {
		switch v := parameter.(type) {
		case sql.Sql:
			l.sql = v
		case cache.Cache:
			l.cache = v
		case utilities.Logger:
			l.Logger = v
		case utilities.Counter:
			l.Counter = v
		}
	}
	if l.Logger == nil {
		l.Logger = utilities.NewLogger()
	}
	if l.Counter == nil {
		l.Counter = utilities.NewCounter()
	}
	return l
}

func (l *logic) Configure(envs map[string]string) error {
	l.Lock()
	defer l.Unlock()

	if cacheEnabled, ok := envs["LOGIC_CACHE_ENABLED"]; ok {
		l.config.cacheEnabled, _ = strconv.ParseBool(cacheEnabled)
	}
	if mutateDisabled, ok := envs["MUTATE_DISABLED"]; ok {
		l.config.mutateDisabled, _ = strconv.ParseBool(mutateDisabled)
	}
	if uniqueImportDisabled, ok := envs["LOGIC_UNIQUE_IMPORT_DISABLED"]; ok {
		l.config.uniqueImportDisabled, _ = strconv.ParseBool(uniqueImportDisabled)
	}
	if l.config.cacheEnabled && l.cache == nil {
		l.config.cacheEnabled = false
	}
	return nil
}

func (l *logic) Open(ctx context.Context) error {
	l.Lock()
	defer l.Unlock()

	if l.config.cacheEnabled {
		l.Info(ctx, "logic: cache enabled")
	}
	return nil
}

func (l *logic) Close(ctx context.Context) error {
	return nil
}

func (l *logic) EmployeeCreate(ctx context.Context, employee data.Employee) (*data.Employee, error) {
	if l.config.mutateDisabled {
		return nil, data.NewBadInputError("mutation disabled")
	}
	if _, err := validate.Id(&employee.Id); err != nil {
		return nil, err
	}
	if _, err := validate.Login(&employee.Login); err != nil {
		return nil, err
	}
	if err := validate.SalaryValue(employee.Salary); err != nil {
		return nil, err
	}
	exists, err := l.sql.EmployeeExists(ctx, employee.Id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, data.NewBadInputError("Employee ID already exists")
	}
	loginExists, err := l.sql.LoginExists(ctx, employee.Login)
	if err != nil {
		return nil, err
	}
	if loginExists {
		return nil, data.NewBadInputError("Employee login not unique")
	}
	return l.sql.EmployeeCreate(ctx, employee)
}

func (l *logic) EmployeeRead(ctx context.Context, id string) (*data.Employee, error) {
	if l.config.cacheEnabled {
		employee, err := l.cache.EmployeeRead(ctx, id)
		if err == nil {
			l.IncrementHit("employee_read")
			return employee, nil
		}
		l.IncrementMiss("employee_read")
		l.Trace(ctx, "error while reading employee (%s) from cache: %s", id, err)
	}
	employee, err := l.sql.EmployeeRead(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.config.cacheEnabled {
		if err := l.cache.EmployeesWrite(ctx, data.EmployeeSearch{}, employee); err != nil {
			l.Error(ctx, "error while writing employee (%s) to cache: %s", id, err)
		}
	}
	return employee, nil
}

// EmployeesSearch applies the default salary range and sort, then
// returns the filtered, ordered and optionally paged listing.
func (l *logic) EmployeesSearch(ctx context.Context, search data.EmployeeSearch) ([]*data.Employee, error) {
	search = search.WithDefaults()
	page, err := l.builder.Build(search.Offset, search.Limit, search.Sort)
	if err != nil {
		return nil, err
	}
	if l.config.cacheEnabled {
		employees, err := l.cache.EmployeesRead(ctx, search)
		if err == nil {
			l.IncrementHit("employees_search")
			return employees, nil
		}
		l.IncrementMiss("employees_search")
		l.Trace(ctx, "error while reading employees from cache: %s", err)
	}
	employees, err := l.sql.EmployeesSearch(ctx, search, page)
	if err != nil {
		return nil, err
	}
	if l.config.cacheEnabled {
		if err := l.cache.EmployeesWrite(ctx, search, employees...); err != nil {
			l.Error(ctx, "error while writing employees to cache: %s", err)
		}
	}
	return employees, nil
}

func (l *logic) EmployeeUpdate(ctx context.Context, id string, employeePartial data.EmployeePartial) (*data.Employee, error) {
	if l.config.mutateDisabled {
		return nil, data.NewBadInputError("mutation disabled")
	}
	if err := validateUpdate(employeePartial); err != nil {
		return nil, err
	}
	existing, err := l.sql.EmployeeRead(ctx, id)
	if err != nil {
		return nil, err
	}
	if *employeePartial.Login != existing.Login {
		loginExists, err := l.sql.LoginExists(ctx, *employeePartial.Login)
		if err != nil {
			return nil, err
		}
		if loginExists {
			return nil, data.NewBadInputError("Employee login not unique")
		}
	}
	employee, err := l.sql.EmployeeUpdate(ctx, id, employeePartial)
	if err != nil {
		return nil, err
	}
	if l.config.cacheEnabled {
		if err := l.cache.EmployeesDelete(ctx, id); err != nil {
			l.Error(ctx, "error while deleting employee (%s) from cache: %s", id, err)
		}
	}
	return employee, nil
}

func (l *logic) EmployeeDelete(ctx context.Context, id string) error {
	if l.config.mutateDisabled {
		return data.NewBadInputError("mutation disabled")
	}
	if err := l.sql.EmployeeDelete(ctx, id); err != nil {
		return err
	}
	if l.config.cacheEnabled {
		if err := l.cache.EmployeesDelete(ctx, id); err != nil {
			l.Error(ctx, "error while deleting employee (%s) from cache: %s", id, err)
		}
	}
	return nil
}

// EmployeesUpload runs the csv import pipeline: content-type check,
// parse/validate/dedup, optional uniqueness check against the store,
// then an all-or-nothing bulk persist. It returns the number of rows
// written; a batch with no data rows succeeds with zero.
func (l *logic) EmployeesUpload(ctx context.Context, contentType string, csvBytes []byte) (int, error) {
	if l.config.mutateDisabled {
		return 0, data.NewBadInputError("mutation disabled")
	}
	if err := validate.ContentType(contentType); err != nil {
		return 0, err
	}
	employees, err := upload.Parse(csvBytes)
	if err != nil {
		return 0, err
	}
	if len(employees) <= 0 {
		l.Info(ctx, "upload contained no data rows")
		return 0, nil
	}
	if !l.config.uniqueImportDisabled {
		if err := l.checkUploadUnique(ctx, employees); err != nil {
			return 0, err
		}
	}
	n, err := l.sql.EmployeesCreate(ctx, employees...)
	if err != nil {
		return 0, err
	}
	if l.config.cacheEnabled {
		ids := make([]string, 0, len(employees))
		for _, employee := range employees {
			ids = append(ids, employee.Id)
		}
		if err := l.cache.EmployeesDelete(ctx, ids...); err != nil {
			l.Error(ctx, "error while deleting uploaded employees from cache: %s", err)
		}
	}
	l.Info(ctx, "uploaded %d employees", n)
	return n, nil
}

func (l *logic) checkUploadUnique(ctx context.Context, employees []data.Employee) error {
	for _, employee := range employees {
		exists, err := l.sql.EmployeeExists(ctx, employee.Id)
		if err != nil {
			return err
		}
		if exists {
			return &data.Error{
				Kind:    data.KindBadInput,
				Message: "Employee ID already exists",
				Keys:    []string{employee.Id},
			}
		}
		loginExists, err := l.sql.LoginExists(ctx, employee.Login)
		if err != nil {
			return err
		}
		if loginExists {
			return &data.Error{
				Kind:    data.KindBadInput,
				Message: "Login id is not unique",
				Keys:    []string{employee.Login},
			}
		}
	}
	return nil
}

func validateUpdate(employeePartial data.EmployeePartial) error {
	if employeePartial.Login == nil {
		return data.NewInvalidFieldError("login cannot be null")
	}
	if _, err := validate.Login(employeePartial.Login); err != nil {
		return err
	}
	if employeePartial.Name == nil {
		return data.NewInvalidFieldError("Invalid name")
	}
	if employeePartial.Salary == nil || *employeePartial.Salary < 0 {
		return data.NewInvalidFieldError("Invalid salary")
	}
	if employeePartial.StartDate == nil {
		return data.NewInvalidFieldError("Invalid date")
	}
	return nil
}

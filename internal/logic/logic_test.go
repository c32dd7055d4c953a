package logic_test

import (
	"context"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/antonio-alexander/go-employee-directory/internal"
	"github.com/antonio-alexander/go-employee-directory/internal/cache"
	"github.com/antonio-alexander/go-employee-directory/internal/data"
	"github.com/antonio-alexander/go-employee-directory/internal/logic"
	"github.com/antonio-alexander/go-employee-directory/internal/query"
	"github.com/antonio-alexander/go-employee-directory/internal/sql"

	"github.com/stretchr/testify/assert"
)

var envs = map[string]string{
	"LOGIC_CACHE_ENABLED": "false",
	"MUTATE_DISABLED":     "false",
}

func init() {
	for _, env := range os.Environ() {
		if s := strings.Split(env, "="); len(s) > 1 {
			envs[s[0]] = strings.Join(s[1:], "=")
		}
	}
}

// memoryStore stands in for the mysql store so the business operations
// can be exercised without a database.
type memoryStore struct {
	sync.RWMutex
	employees map[string]*data.Employee
}

func newMemoryStore() *memoryStore {
	return &memoryStore{employees: make(map[string]*data.Employee)}
}

func (m *memoryStore) employeeCreate(employee data.Employee) (*data.Employee, error) {
	if _, ok := m.employees[employee.Id]; ok {
		return nil, data.NewBadInputError("Employee ID already exists")
	}
	for _, existing := range m.employees {
		if existing.Login == employee.Login {
			return nil, data.NewBadInputError("Employee login not unique")
		}
	}
	employee.LastModifiedAt = time.Now().UnixNano()
	created := employee
	m.employees[employee.Id] = &created
	return &employee, nil
}

func (m *memoryStore) EmployeeCreate(ctx context.Context, employee data.Employee) (*data.Employee, error) {
	m.Lock()
	defer m.Unlock()

	return m.employeeCreate(employee)
}

func (m *memoryStore) EmployeesCreate(ctx context.Context, employees ...data.Employee) (int, error) {
	m.Lock()
	defer m.Unlock()

	inserted := make([]string, 0, len(employees))
	for _, employee := range employees {
		if _, err := m.employeeCreate(employee); err != nil {
			for _, id := range inserted {
				delete(m.employees, id)
			}
			return 0, err
		}
		inserted = append(inserted, employee.Id)
	}
	return len(inserted), nil
}

func (m *memoryStore) EmployeeRead(ctx context.Context, id string) (*data.Employee, error) {
	m.RLock()
	defer m.RUnlock()

	employee, ok := m.employees[id]
	if !ok {
		return nil, data.NewBadInputError("No such employee")
	}
	e := *employee
	return &e, nil
}

func (m *memoryStore) EmployeesSearch(ctx context.Context, search data.EmployeeSearch, page *query.PageRequest) ([]*data.Employee, error) {
	m.RLock()
	defer m.RUnlock()

	var employees []*data.Employee
	for _, employee := range m.employees {
		if search.MinSalary != nil && employee.Salary < *search.MinSalary {
			continue
		}
		if search.MaxSalary != nil && employee.Salary >= *search.MaxSalary {
			continue
		}
		e := *employee
		employees = append(employees, &e)
	}
	sort.SliceStable(employees, func(i, j int) bool {
		for _, order := range page.Orders {
			var less, greater bool

			switch order.Field {
			case "id":
				less = employees[i].Id < employees[j].Id
				greater = employees[i].Id > employees[j].Id
			case "login":
				less = employees[i].Login < employees[j].Login
				greater = employees[i].Login > employees[j].Login
			case "name":
				less = employees[i].Name < employees[j].Name
				greater = employees[i].Name > employees[j].Name
			case "salary":
				less = employees[i].Salary < employees[j].Salary
				greater = employees[i].Salary > employees[j].Salary
			case "startDate":
				less = employees[i].StartDate.Before(employees[j].StartDate.Time)
				greater = employees[i].StartDate.After(employees[j].StartDate.Time)
			case "lastModifiedAt":
				less = employees[i].LastModifiedAt < employees[j].LastModifiedAt
				greater = employees[i].LastModifiedAt > employees[j].LastModifiedAt
			}
			if !less && !greater {
				continue
			}
			if order.Direction == query.Descending {
				return greater
			}
			return less
		}
		return false
	})
	if page.Unpaged {
		return employees, nil
	}
	if page.Offset >= len(employees) {
		return nil, nil
	}
	end := page.Offset + page.Limit
	if end > len(employees) {
		end = len(employees)
	}
	return employees[page.Offset:end], nil
}

func (m *memoryStore) EmployeeUpdate(ctx context.Context, id string, employeePartial data.EmployeePartial) (*data.Employee, error) {
	m.Lock()
	defer m.Unlock()

	employee, ok := m.employees[id]
	if !ok {
		return nil, data.NewBadInputError("No such employee")
	}
	if employeePartial.Login != nil {
		employee.Login = *employeePartial.Login
	}
	if employeePartial.Name != nil {
		employee.Name = *employeePartial.Name
	}
	if employeePartial.Salary != nil {
		employee.Salary = *employeePartial.Salary
	}
	if employeePartial.StartDate != nil {
		employee.StartDate = *employeePartial.StartDate
	}
	employee.LastModifiedAt = time.Now().UnixNano()
	e := *employee
	return &e, nil
}

func (m *memoryStore) EmployeeDelete(ctx context.Context, id string) error {
	m.Lock()
	defer m.Unlock()

	if _, ok := m.employees[id]; !ok {
		return data.NewBadInputError("No such employee")
	}
	delete(m.employees, id)
	return nil
}

func (m *memoryStore) EmployeeExists(ctx context.Context, id string) (bool, error) {
	m.RLock()
	defer m.RUnlock()

	_, ok := m.employees[id]
	return ok, nil
}

func (m *memoryStore) LoginExists(ctx context.Context, login string) (bool, error) {
	m.RLock()
	defer m.RUnlock()

	for _, employee := range m.employees {
		if employee.Login == login {
			return true, nil
		}
	}
	return false, nil
}

var _ sql.Sql = &memoryStore{}

type logicTest struct {
	store *memoryStore
	cache interface {
		internal.Configurer
		internal.Opener
		cache.Cache
	}
	logic interface {
		internal.Configurer
		internal.Opener
	}
	logic.Logic
}

func newLogicTest() *logicTest {
	store := newMemoryStore()
	c := cache.NewMemory()
	l := logic.NewLogic(store, c)
	return &logicTest{
		store: store,
		cache: c,
		logic: l,
		Logic: l,
	}
}

func (l *logicTest) open(t *testing.T, envs map[string]string) context.Context {
	ctx := context.TODO()
	if err := l.cache.Configure(envs); err != nil {
		assert.FailNow(t, "unable to configure cache")
	}
	if err := l.cache.Open(ctx); err != nil {
		assert.FailNow(t, "unable to open cache")
	}
	if err := l.logic.Configure(envs); err != nil {
		assert.FailNow(t, "unable to configure logic")
	}
	if err := l.logic.Open(ctx); err != nil {
		assert.FailNow(t, "unable to open logic")
	}
	t.Cleanup(func() {
		_ = l.logic.Close(context.Background())
		_ = l.cache.Close(context.Background())
	})
	return ctx
}

func stringPointer(s string) *string {
	return &s
}

func float64Pointer(f float64) *float64 {
	return &f
}

func datePointer(year int, month time.Month, day int) *data.Date {
	d := data.NewDate(year, month, day)
	return &d
}

func TestEmployeeCrud(t *testing.T) {
	l := newLogicTest()
	ctx := l.open(t, envs)

	// create
	employee, err := l.EmployeeCreate(ctx, data.Employee{
		Id:        "e0001",
		Login:     "hpotter",
		Name:      "Harry Potter",
		Salary:    1234.00,
		StartDate: data.NewDate(2001, time.November, 16),
	})
	assert.Nil(t, err)
	assert.Equal(t, "e0001", employee.Id)

	// read
	employeeRead, err := l.EmployeeRead(ctx, "e0001")
	assert.Nil(t, err)
	assert.Equal(t, "hpotter", employeeRead.Login)
	assert.Equal(t, 1234.00, employeeRead.Salary)

	// update
	employeePartial := data.EmployeePartial{
		Login:     stringPointer("hpotter"),
		Name:      stringPointer("Harry J Potter"),
		Salary:    float64Pointer(2000.00),
		StartDate: datePointer(2001, time.November, 16),
	}
	employeeUpdated, err := l.EmployeeUpdate(ctx, "e0001", employeePartial)
	assert.Nil(t, err)
	assert.Equal(t, "Harry J Potter", employeeUpdated.Name)
	assert.Equal(t, 2000.00, employeeUpdated.Salary)

	// identical update succeeds with the same values
	employeeUpdated, err = l.EmployeeUpdate(ctx, "e0001", employeePartial)
	assert.Nil(t, err)
	assert.Equal(t, "Harry J Potter", employeeUpdated.Name)

	// delete
	err = l.EmployeeDelete(ctx, "e0001")
	assert.Nil(t, err)

	// read after delete
	_, err = l.EmployeeRead(ctx, "e0001")
	assert.NotNil(t, err)
	assert.Equal(t, "No such employee", err.Error())

	// delete after delete
	err = l.EmployeeDelete(ctx, "e0001")
	assert.NotNil(t, err)
	assert.Equal(t, "No such employee", err.Error())
}

func TestEmployeeCreateValidation(t *testing.T) {
	l := newLogicTest()
	ctx := l.open(t, envs)

	employee := data.Employee{
		Id:        "e0001",
		Login:     "hpotter",
		Name:      "Harry Potter",
		Salary:    1234.00,
		StartDate: data.NewDate(2001, time.November, 16),
	}
	_, err := l.EmployeeCreate(ctx, employee)
	assert.Nil(t, err)

	// duplicate id
	duplicateId := employee
	duplicateId.Login = "rwesley"
	_, err = l.EmployeeCreate(ctx, duplicateId)
	assert.NotNil(t, err)
	assert.Equal(t, "Employee ID already exists", err.Error())

	// duplicate login
	duplicateLogin := employee
	duplicateLogin.Id = "e0002"
	_, err = l.EmployeeCreate(ctx, duplicateLogin)
	assert.NotNil(t, err)
	assert.Equal(t, "Employee login not unique", err.Error())

	// invalid id
	invalidId := employee
	invalidId.Id = "e 0003"
	_, err = l.EmployeeCreate(ctx, invalidId)
	assert.NotNil(t, err)
	assert.Equal(t, "Invalid id e 0003, only alphanumeric values"+
		" are allowed for id", err.Error())

	// negative salary
	negativeSalary := employee
	negativeSalary.Id, negativeSalary.Login = "e0004", "hgranger"
	negativeSalary.Salary = -1
	_, err = l.EmployeeCreate(ctx, negativeSalary)
	assert.NotNil(t, err)
}

func TestEmployeeUpdateValidation(t *testing.T) {
	l := newLogicTest()
	ctx := l.open(t, envs)

	for _, employee := range []data.Employee{
		{Id: "e0001", Login: "hpotter", Name: "Harry Potter",
			Salary: 1234.00, StartDate: data.NewDate(2001, time.November, 16)},
		{Id: "e0002", Login: "rwesley", Name: "Ron Weasley",
			Salary: 1234.00, StartDate: data.NewDate(2001, time.November, 16)},
	} {
		_, err := l.EmployeeCreate(ctx, employee)
		assert.Nil(t, err)
	}
	employeePartial := data.EmployeePartial{
		Login:     stringPointer("hpotter"),
		Name:      stringPointer("Harry Potter"),
		Salary:    float64Pointer(1234.00),
		StartDate: datePointer(2001, time.November, 16),
	}

	// all fields are required
	missingLogin := employeePartial
	missingLogin.Login = nil
	_, err := l.EmployeeUpdate(ctx, "e0001", missingLogin)
	assert.NotNil(t, err)
	assert.Equal(t, "login cannot be null", err.Error())

	missingName := employeePartial
	missingName.Name = nil
	_, err = l.EmployeeUpdate(ctx, "e0001", missingName)
	assert.NotNil(t, err)
	assert.Equal(t, "Invalid name", err.Error())

	missingSalary := employeePartial
	missingSalary.Salary = nil
	_, err = l.EmployeeUpdate(ctx, "e0001", missingSalary)
	assert.NotNil(t, err)
	assert.Equal(t, "Invalid salary", err.Error())

	missingStartDate := employeePartial
	missingStartDate.StartDate = nil
	_, err = l.EmployeeUpdate(ctx, "e0001", missingStartDate)
	assert.NotNil(t, err)
	assert.Equal(t, "Invalid date", err.Error())

	// taking another employee's login
	stolenLogin := employeePartial
	stolenLogin.Login = stringPointer("rwesley")
	_, err = l.EmployeeUpdate(ctx, "e0001", stolenLogin)
	assert.NotNil(t, err)
	assert.Equal(t, "Employee login not unique", err.Error())

	// unknown employee
	_, err = l.EmployeeUpdate(ctx, "e9999", employeePartial)
	assert.NotNil(t, err)
	assert.Equal(t, "No such employee", err.Error())
}

func TestEmployeesSearch(t *testing.T) {
	l := newLogicTest()
	ctx := l.open(t, envs)

	salaries := map[string]float64{
		"e0001": 0,
		"e0002": 1000,
		"e0003": 3999.99,
		"e0004": 4000,
		"e0005": 5000,
	}
	for id, salary := range salaries {
		_, err := l.EmployeeCreate(ctx, data.Employee{
			Id:        id,
			Login:     "login" + id,
			Name:      "Employee " + id,
			Salary:    salary,
			StartDate: data.NewDate(2001, time.November, 16),
		})
		assert.Nil(t, err)
	}

	// defaults: [0, 4000) sorted by id ascending, unpaged
	employees, err := l.EmployeesSearch(ctx, data.EmployeeSearch{})
	assert.Nil(t, err)
	assert.Len(t, employees, 3)
	assert.Equal(t, "e0001", employees[0].Id)
	assert.Equal(t, "e0002", employees[1].Id)
	assert.Equal(t, "e0003", employees[2].Id)

	// the lower bound is inclusive, the upper bound exclusive
	employees, err = l.EmployeesSearch(ctx, data.EmployeeSearch{
		MinSalary: float64Pointer(1000),
		MaxSalary: float64Pointer(4000),
	})
	assert.Nil(t, err)
	assert.Len(t, employees, 2)
	assert.Equal(t, "e0002", employees[0].Id)
	assert.Equal(t, "e0003", employees[1].Id)

	// descending salary
	employees, err = l.EmployeesSearch(ctx, data.EmployeeSearch{
		MaxSalary: float64Pointer(10000),
		Sort:      "salary-desc",
	})
	assert.Nil(t, err)
	assert.Len(t, employees, 5)
	assert.Equal(t, "e0005", employees[0].Id)
	assert.Equal(t, "e0001", employees[4].Id)

	// paging window
	employees, err = l.EmployeesSearch(ctx, data.EmployeeSearch{
		MaxSalary: float64Pointer(10000),
		Offset:    1,
		Limit:     2,
	})
	assert.Nil(t, err)
	assert.Len(t, employees, 2)
	assert.Equal(t, "e0002", employees[0].Id)
	assert.Equal(t, "e0003", employees[1].Id)

	// offset past the end
	employees, err = l.EmployeesSearch(ctx, data.EmployeeSearch{
		MaxSalary: float64Pointer(10000),
		Offset:    100,
		Limit:     10,
	})
	assert.Nil(t, err)
	assert.Empty(t, employees)

	// invalid sort
	_, err = l.EmployeesSearch(ctx, data.EmployeeSearch{Sort: "bogus"})
	assert.NotNil(t, err)
	assert.Equal(t, "Can sort based on one of the following columns"+
		" [id, login, name, salary, startDate, lastModifiedAt]", err.Error())
}

func TestEmployeesUpload(t *testing.T) {
	l := newLogicTest()
	ctx := l.open(t, envs)

	// valid batch
	csv := "id,login,name,salary,startDate\n" +
		"e0001,hpotter,Harry Potter,1234.00,2001-11-16\n" +
		"e0002,rwesley,Ron Weasley,19234.50,2001-11-16\n"
	n, err := l.EmployeesUpload(ctx, "text/csv", []byte(csv))
	assert.Nil(t, err)
	assert.Equal(t, 2, n)
	employee, err := l.EmployeeRead(ctx, "e0002")
	assert.Nil(t, err)
	assert.Equal(t, "rwesley", employee.Login)

	// wrong content type
	_, err = l.EmployeesUpload(ctx, "application/json", []byte(csv))
	assert.NotNil(t, err)
	assert.Equal(t, "The input file provided is not of a valid format."+
		" Please upload a csv file only", err.Error())

	// empty batch succeeds without writing
	n, err = l.EmployeesUpload(ctx, "text/csv", nil)
	assert.Nil(t, err)
	assert.Equal(t, 0, n)

	// id already present in the store
	csv = "id,login,name,salary,startDate\n" +
		"e0001,hgranger,Hermione Granger,1234.00,2001-11-16\n"
	_, err = l.EmployeesUpload(ctx, "text/csv", []byte(csv))
	assert.NotNil(t, err)
	assert.Equal(t, "Employee ID already exists", err.Error())

	// login already present in the store
	csv = "id,login,name,salary,startDate\n" +
		"e0003,hpotter,Harry Potter,1234.00,2001-11-16\n"
	_, err = l.EmployeesUpload(ctx, "text/csv", []byte(csv))
	assert.NotNil(t, err)
	assert.Equal(t, "Login id is not unique", err.Error())

	// a failed batch writes nothing
	csv = "id,login,name,salary,startDate\n" +
		"e0004,nlongbottom,Neville Longbottom,1234.00,2001-11-16\n" +
		"e0005,hpotter,Harry Potter,1234.00,2001-11-16\n"
	_, err = l.EmployeesUpload(ctx, "text/csv", []byte(csv))
	assert.NotNil(t, err)
	_, err = l.EmployeeRead(ctx, "e0004")
	assert.NotNil(t, err)
}

func TestMutateDisabled(t *testing.T) {
	l := newLogicTest()
	mutateDisabled := make(map[string]string)
	for k, v := range envs {
		mutateDisabled[k] = v
	}
	mutateDisabled["MUTATE_DISABLED"] = "true"
	ctx := l.open(t, mutateDisabled)

	_, err := l.EmployeeCreate(ctx, data.Employee{
		Id: "e0001", Login: "hpotter", Name: "Harry Potter",
	})
	assert.NotNil(t, err)
	_, err = l.EmployeesUpload(ctx, "text/csv", nil)
	assert.NotNil(t, err)
	err = l.EmployeeDelete(ctx, "e0001")
	assert.NotNil(t, err)
}

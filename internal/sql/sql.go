package sql

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/antonio-alexander/go-employee-directory/internal"
	"github.com/antonio-alexander/go-employee-directory/internal/data"
	"github.com/antonio-alexander/go-employee-directory/internal/query"
	"github.com/antonio-alexander/go-employee-directory/internal/utilities"

	_ "github.com/go-sql-driver/mysql" //import for driver support
)

const (
	databaseIsolation = sql.LevelSerializable
	tableEmployees    = "employees"
)

type Sql interface {
	EmployeeCreate(ctx context.Context, employee data.Employee) (*data.Employee, error)
	EmployeesCreate(ctx context.Context, employees ...data.Employee) (int, error)
	EmployeeRead(ctx context.Context, id string) (*data.Employee, error)
	EmployeesSearch(ctx context.Context, search data.EmployeeSearch, page *query.PageRequest) ([]*data.Employee, error)
	EmployeeUpdate(ctx context.Context, id string, employeePartial data.EmployeePartial) (*data.Employee, error)
	EmployeeDelete(ctx context.Context, id string) error
	EmployeeExists(ctx context.Context, id string) (bool, error)
	LoginExists(ctx context.Context, login string) (bool, error)
}

type mySql struct {
	sync.RWMutex
	config struct {
		Hostname       string        `json:"hostname"`
		Port           string        `json:"port"`
		Username       string        `json:"username"`
		Password       string        `json:"password"`
		Database       string        `json:"database"`
		ConnectTimeout time.Duration `json:"connect_timeout"`
		QueryTimeout   time.Duration `json:"query_timeout"`
		ParseTime      bool          `json:"parse_time"`
	}
	*sql.DB
	utilities.Logger
	opened bool
}

func NewMySql(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Sql
} {
	m := &mySql{}
	for _, parameter := range parameters {
		switch v := parameter.(type) {
		case utilities.Logger:
			m.Logger = v
		}
	}
	return m
}

func (s *mySql) Configure(envs map[string]string) error {
	if databaseHost := envs["DATABASE_HOST"]; databaseHost != "" {
		s.config.Hostname = databaseHost
	}
	if databasePort := envs["DATABASE_PORT"]; databasePort != "" {
		s.config.Port = databasePort
	}
	if database := envs["DATABASE_NAME"]; database != "" {
		s.config.Database = database
	}
	if username := envs["DATABASE_USER"]; username != "" {
		s.config.Username = username
	}
	if password := envs["DATABASE_PASSWORD"]; password != "" {
		s.config.Password = password
	}
	if _, ok := envs["DATABASE_QUERY_TIMEOUT"]; ok {
		i, _ := strconv.ParseInt(envs["DATABASE_QUERY_TIMEOUT"], 10, 64)
		s.config.QueryTimeout = time.Duration(i) * time.Second
	}
	if _, ok := envs["DATABASE_PARSE_TIME"]; ok {
		s.config.ParseTime, _ = strconv.ParseBool(envs["DATABASE_PARSE_TIME"])
	}
	return nil
}

func (s *mySql) Open(ctx context.Context) error {
	dataSourceName := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=%t",
		s.config.Username, s.config.Password, s.config.Hostname,
		s.config.Port, s.config.Database, s.config.ParseTime)
	db, err := sql.Open("mysql", dataSourceName)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		return err
	}
	s.DB = db
	s.opened = true
	return nil
}

func (s *mySql) Close(ctx context.Context) error {
	if !s.opened {
		return nil
	}
	if err := s.DB.Close(); err != nil {
		s.Error(ctx, "error while closing sql: %s", err)
	}
	return nil
}

func (s *mySql) EmployeeCreate(ctx context.Context, employee data.Employee) (*data.Employee, error) {
	query := fmt.Sprintf(`INSERT INTO %s (id, login, name, salary, start_date,
		last_modified_at) VALUES (?, ?, ?, ?, ?, NOW());`, tableEmployees)
	if _, err := s.ExecContext(ctx, query, employee.Id, employee.Login,
		employee.Name, employee.Salary, employee.StartDate.Time); err != nil {
		return nil, translateError(err)
	}
	return s.EmployeeRead(ctx, employee.Id)
}

// EmployeesCreate persists the whole batch in a single transaction;
// any failure rolls back every row.
func (s *mySql) EmployeesCreate(ctx context.Context, employees ...data.Employee) (int, error) {
	if len(employees) <= 0 {
		return 0, nil
	}
	tx, err := s.BeginTx(ctx, &sql.TxOptions{Isolation: databaseIsolation})
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, login, name, salary, start_date,
		last_modified_at) VALUES (?, ?, ?, ?, ?, NOW());`, tableEmployees)
	for _, employee := range employees {
		if _, err := tx.ExecContext(ctx, query, employee.Id, employee.Login,
			employee.Name, employee.Salary, employee.StartDate.Time); err != nil {
			_ = tx.Rollback()
			return 0, translateError(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, translateError(err)
	}
	return len(employees), nil
}

func (s *mySql) EmployeeRead(ctx context.Context, id string) (*data.Employee, error) {
	query := fmt.Sprintf(`SELECT id, login, name, salary, start_date,
		last_modified_at FROM %s WHERE id = ?;`,
		tableEmployees)
	row := s.QueryRowContext(ctx, query, id)
	employee, err := employeeScan(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, data.NewBadInputError("No such employee")
		}
		return nil, err
	}
	return employee, nil
}

func (s *mySql) EmployeesSearch(ctx context.Context, search data.EmployeeSearch, page *query.PageRequest) ([]*data.Employee, error) {
	var employees []*data.Employee

	criteria, args := employeeCriteria(search)
	suffix, err := pageSuffix(page)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT id, login, name, salary, start_date,
		last_modified_at FROM %s %s%s;`,
		tableEmployees, criteria, suffix)
	rows, err := s.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		employee, err := employeeScan(rows.Scan)
		if err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	return employees, rows.Err()
}

func (s *mySql) EmployeeUpdate(ctx context.Context, id string, employeePartial data.EmployeePartial) (*data.Employee, error) {
	var args []any
	var updates []string

	if employeePartial.Login != nil {
		args = append(args, employeePartial.Login)
		updates = append(updates, "login = ?")
	}
	if employeePartial.Name != nil {
		args = append(args, employeePartial.Name)
		updates = append(updates, "name = ?")
	}
	if employeePartial.Salary != nil {
		args = append(args, employeePartial.Salary)
		updates = append(updates, "salary = ?")
	}
	if employeePartial.StartDate != nil {
		args = append(args, employeePartial.StartDate.Time)
		updates = append(updates, "start_date = ?")
	}
	updates = append(updates, "last_modified_at = NOW()")
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", tableEmployees,
		strings.Join(updates, ","))
	args = append(args, id)
	if _, err := s.ExecContext(ctx, query, args...); err != nil {
		return nil, translateError(err)
	}
	return s.EmployeeRead(ctx, id)
}

func (s *mySql) EmployeeDelete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?;`,
		tableEmployees)
	result, err := s.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return data.NewBadInputError("No such employee")
	}
	return nil
}

func (s *mySql) EmployeeExists(ctx context.Context, id string) (bool, error) {
	var exists bool

	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE id = ?);",
		tableEmployees)
	row := s.QueryRowContext(ctx, query, id)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (s *mySql) LoginExists(ctx context.Context, login string) (bool, error) {
	var exists bool

	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE login = ?);",
		tableEmployees)
	row := s.QueryRowContext(ctx, query, login)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

package swagger

import "github.com/antonio-alexander/go-employee-directory/internal/data"

// swagger:route PUT /users/{Id} Employee UpdateEmployee
// Updates an employee's login, name, salary and start date.
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
// responses:
//   200: EmployeePutResponseOk

// swagger:response EmployeePutResponseOk
type EmployeePutResponseOk struct {
	// in:body
	Response data.Response `json:"response"`
}

// swagger:parameters UpdateEmployee
type EmployeePutParams struct {
	// in:path
	Id string `json:"Id"`

	// in:body
	EmployeePartial data.EmployeePartial `json:"employee_partial"`

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}

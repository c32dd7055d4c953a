package swagger

import "github.com/antonio-alexander/go-employee-directory/internal/data"

// swagger:route POST /users Employee CreateEmployee
// Creates an employee.
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
// responses:
//   201: EmployeePostResponseCreated

// swagger:response EmployeePostResponseCreated
type EmployeePostResponseCreated struct {
	// in:body
	Response data.Response `json:"response"`
}

// swagger:parameters CreateEmployee
type EmployeePostParams struct {
	// in:body
	Employee data.Employee `json:"employee"`

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}

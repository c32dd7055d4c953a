package swagger

import "github.com/antonio-alexander/go-employee-directory/internal/data"

// swagger:route GET /users/{Id} Employee ReadEmployee
// Reads an employee by id.
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
// responses:
//   200: EmployeeGetResponseOk

// swagger:response EmployeeGetResponseOk
type EmployeeGetResponseOk struct {
	// in:body
	Employee data.Employee `json:"employee"`
}

// swagger:parameters ReadEmployee
type EmployeeGetParams struct {
	// in:path
	Id string `json:"Id"`

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}

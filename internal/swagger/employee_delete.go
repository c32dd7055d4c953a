package swagger

import "github.com/antonio-alexander/go-employee-directory/internal/data"

// swagger:route DELETE /users/{Id} Employee DeleteEmployee
// Deletes an employee by id.
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
// responses:
//   200: EmployeeDeleteResponseOk

// swagger:response EmployeeDeleteResponseOk
type EmployeeDeleteResponseOk struct {
	// in:body
	Response data.Response `json:"response"`
}

// swagger:parameters DeleteEmployee
type EmployeeDeleteParams struct {
	// in:path
	Id string `json:"Id"`

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}

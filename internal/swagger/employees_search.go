package swagger

import "github.com/antonio-alexander/go-employee-directory/internal/data"

// swagger:route GET /users Employee SearchEmployees
// Lists employees filtered by salary range, sorted and paged.
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
// responses:
//   200: EmployeesSearchResponseOk

// swagger:response EmployeesSearchResponseOk
type EmployeesSearchGetResponseOk struct {
	// in:body
	Results data.Results `json:"results"`
}

// swagger:parameters SearchEmployees
type EmployeesSearchGetParams struct {
	// in:query
	data.EmployeeSearch

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}

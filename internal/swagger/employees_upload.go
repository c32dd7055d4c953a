package swagger

import "github.com/antonio-alexander/go-employee-directory/internal/data"

// swagger:route POST /users/upload Employee UploadEmployees
// Bulk imports employees from a csv file; the batch is all-or-nothing.
//
//     Consumes:
//     - multipart/form-data
//
//     Produces:
//     - application/json
//
// responses:
//   200: EmployeesUploadResponseOk
//   201: EmployeesUploadResponseCreated

// swagger:response EmployeesUploadResponseOk
type EmployeesUploadResponseOk struct {
	// in:body
	Response data.Response `json:"response"`
}

// swagger:response EmployeesUploadResponseCreated
type EmployeesUploadResponseCreated struct {
	// in:body
	Response data.Response `json:"response"`
}

// swagger:parameters UploadEmployees
type EmployeesUploadParams struct {
	// csv file with columns id, login, name, salary, startDate
	//
	// in:formData
	// swagger:file
	File interface{} `json:"file"`

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}

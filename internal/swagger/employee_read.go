package swagger

import "github.com/antonio-alexander/go-employees/internal/data"

// swagger:route GET /api/employees/{id} Employee ReadEmployee
// Reads an employee using its id.
//
//     Produces:
//     - application/json
//
// responses:
//   200: EmployeeResponseOk
//   400: ErrorResponse
//   404: ErrorResponse
//   503: ErrorResponse

// swagger:response EmployeeResponseOk
type EmployeeResponseOk struct {
	// in:body
	Employee data.Employee
}

// swagger:parameters ReadEmployee
type EmployeeGetParams struct {
	// in:path
	Id int64 `json:"id"`

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}

package swagger

import "github.com/antonio-alexander/go-employees/internal/data"

// swagger:route PUT /api/employees Employee UpdateEmployee
// Replaces the employee with the id in the body; fields that are omitted
// are stored as empty.
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
// responses:
//   200: EmployeeResponseOk
//   400: ErrorResponse
//   403: ErrorResponse
//   503: ErrorResponse

// swagger:parameters UpdateEmployee
type EmployeePutParams struct {
	// in:body
	Employee data.Employee

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}

package swagger

import "github.com/antonio-alexander/go-employees/internal/data"

// swagger:route POST /api/employees Employee CreateEmployee
// Creates an employee, any id provided is ignored and one is assigned.
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

// swagger:parameters CreateEmployee
type EmployeePostParams struct {
	// in:body
	Employee data.Employee

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}

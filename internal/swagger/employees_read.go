package swagger

import "github.com/antonio-alexander/go-employees/internal/data"

// swagger:route GET /api/employees Employee ReadEmployees
// Reads all employees ordered by id.
//
//     Produces:
//     - application/json
//
// responses:
//   200: EmployeesGetResponseOk
//   503: ErrorResponse

// swagger:response EmployeesGetResponseOk
type EmployeesGetResponseOk struct {
	// in:body
	Employees []data.Employee
}

// swagger:parameters ReadEmployees
type EmployeesGetParams struct {
	// in:header
	CorrelationId string `json:"Correlation-Id"`
}

// swagger:response ErrorResponse
type ErrorResponse struct {
	// in:body
	Error data.Error
}

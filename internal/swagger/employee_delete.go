package swagger

// swagger:route DELETE /api/employees/{id} Employee DeleteEmployee
// Deletes an employee using its id.
//
//     Produces:
//     - text/plain
//
// responses:
//   200: EmployeeDeleteResponseOk
//   400: ErrorResponse
//   403: ErrorResponse
//   404: ErrorResponse
//   503: ErrorResponse

// swagger:response EmployeeDeleteResponseOk
type EmployeeDeleteResponseOk struct {
	// in:body
	Message string
}

// swagger:parameters DeleteEmployee
type EmployeeDeleteParams struct {
	// in:path
	Id int64 `json:"id"`

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}

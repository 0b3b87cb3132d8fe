package swagger

// swagger:route PATCH /api/employees/{id} Employee PatchEmployee
// Merges the fields in the body into the stored employee, the body
// must not contain an id.
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
//   404: ErrorResponse
//   503: ErrorResponse

// swagger:parameters PatchEmployee
type EmployeePatchParams struct {
	// in:path
	Id int64 `json:"id"`

	// in:body
	Patch map[string]any

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}

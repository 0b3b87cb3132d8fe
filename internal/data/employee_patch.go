package data

import "encoding/json"

// EmployeePatch is a sparse update keyed by the json name of an employee
// field; values keep whatever shape they were decoded with (nil, bool,
// float64, string, map[string]any or []any).
type EmployeePatch map[string]any

func (p EmployeePatch) HasId() bool {
	_, ok := p[FieldId]
	return ok
}

func (p *EmployeePatch) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, p)
}

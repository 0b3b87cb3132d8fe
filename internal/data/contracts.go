package data

const (
	RoutePrefix          string = "/api"
	RouteEmployees       string = RoutePrefix + "/employees"
	RouteEmployeesId     string = RouteEmployees + "/{" + PathId + "}"
	RouteEmployeesIdf    string = RouteEmployees + "/%d"
	RouteCache           string = "/cache"
	RouteCacheCounters   string = RouteCache + "/counters"
	RouteTimers          string = "/timers"
	RouteSwagger         string = "/swagger/"
	RouteSwaggerDocument string = RouteSwagger + "doc.json"
)

const PathId string = "id"

const (
	FieldId        string = "id"
	FieldFirstName string = "firstName"
	FieldLastName  string = "lastName"
	FieldEmail     string = "email"
)

const TableEmployee string = "employee"

// MessageEmployeeDeletedf is the body returned once an employee has been
// deleted; existing clients match on it.
const MessageEmployeeDeletedf string = "deleted employee %d"

type Error struct {
	Error string `json:"error"`
}

type Timers struct {
	Totals   map[string]int64 `json:"totals,omitempty"`
	Averages map[string]int64 `json:"averages,omitempty"`
}

type CacheCounters struct {
	Hits   map[string]int `json:"hits,omitempty"`
	Misses map[string]int `json:"misses,omitempty"`
}

package data

const (
	RouteEmployees       string = "/users"
	RouteEmployeesUpload string = RouteEmployees + "/upload"
	RouteEmployeesId     string = RouteEmployees + "/{" + PathId + "}"
	RouteEmployeesIdf    string = RouteEmployees + "/%s"
	RouteCache           string = "/cache"
	RouteCacheCounters   string = RouteCache + "/counters"
	RouteTimers          string = "/timers"
)

const PathId string = "Id"

const (
	ParameterMinSalary string = "minSalary"
	ParameterMaxSalary string = "maxSalary"
	ParameterOffset    string = "offset"
	ParameterLimit     string = "limit"
	ParameterSort      string = "orderByfieldAndDirection"
	ParameterFile      string = "file"
)

const (
	DefaultMinSalary float64 = 0
	DefaultMaxSalary float64 = 4000.00
	DefaultSort      string  = "id-asc"
)

const ContentTypeCsv string = "text/csv"

// Results wraps a listing in the shape the original API produced.
type Results struct {
	Results []*Employee `json:"results"`
}

type Response struct {
	Message string `json:"message,omitempty"`
	Id      string `json:"id,omitempty"`
	Count   int    `json:"count,omitempty"`
}

package process

// Result is the structured outcome every lifecycle operation returns across
// the core boundary. Err carries the sentinel class for callers that map
// outcomes to transport responses; it is never serialized.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusWarning = "warning"
)

func success(msg string) Result {
	return Result{Status: StatusSuccess, Message: msg}
}

func failure(err error, msg string) Result {
	return Result{Status: StatusError, Message: msg, Err: err}
}

func warning(err error, msg string) Result {
	return Result{Status: StatusWarning, Message: msg, Err: err}
}

// Stats is the supervisor's resource snapshot for the stats endpoint.
type Stats struct {
	Status     string  `json:"status"`
	PID        int     `json:"pid,omitempty"`
	CPUPercent float64 `json:"cpu_percent"`
	RAMMB      float64 `json:"ram_mb"`
	Uptime     string  `json:"uptime"`
	Players    int     `json:"players"`
}

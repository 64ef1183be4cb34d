package matter

// LookupStatus is the life cycle of one asynchronous lookup.
type LookupStatus string

const (
	StatusIdle    LookupStatus = "idle"
	StatusLoading LookupStatus = "loading"
	StatusReady   LookupStatus = "ready"
	StatusFailed  LookupStatus = "failed"
)

// LookupState reports the status of a lookup and, when it failed, why.
type LookupState struct {
	Status LookupStatus `json:"status"`
	Err    string       `json:"error,omitempty"`
}

func idle() LookupState    { return LookupState{Status: StatusIdle} }
func loading() LookupState { return LookupState{Status: StatusLoading} }
func ready() LookupState   { return LookupState{Status: StatusReady} }

func failed(err error) LookupState {
	return LookupState{Status: StatusFailed, Err: err.Error()}
}

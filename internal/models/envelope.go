package models

// Envelope is the uniform response contract every endpoint returns. Excluded
// layers and downstream services rely on the exact field set, so it is
// preserved verbatim across success and failure paths.
type Envelope struct {
	Success bool                   `json:"success"`
	Data    interface{}            `json:"data"`
	Error   string                 `json:"error,omitempty"`
	Message string                 `json:"message"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

// OK builds a success envelope.
func OK(message string, data interface{}) Envelope {
	return Envelope{Success: true, Data: data, Message: message}
}

// Err builds a failure envelope. code is the stable machine-readable error
// identifier; message is the human-readable summary. Internal detail
// (connection strings, stack state) never goes here.
func Err(message, code string) Envelope {
	return Envelope{Success: false, Error: code, Message: message}
}

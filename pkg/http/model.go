package http

// ErrorBody is the body for 400/404/500 responses.
type ErrorBody struct {
	Error string `json:"error"`
}

// UnavailableBody is the body for 503 responses.
type UnavailableBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ValidationError represents one failed request constraint.
type ValidationError struct {
	Code    string                 `json:"code,omitempty"`
	Field   string                 `json:"field,omitempty"`
	Message string                 `json:"message,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

package dto

// ErrorResponse is the body returned for every failed call.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Kind    string            `json:"kind"`
	Context map[string]string `json:"context,omitempty"`
}

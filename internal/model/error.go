package model

// ErrorResponse is the consistent JSON structure for all API error responses.
// Code is one of the derivation error codes (CODE_TOO_SHORT, ...) or a transport code.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

package transmission

import (
	"net/http"
	"strconv"
)

// Sentinel error codes for failures that have no HTTP status from the host.
// Numeric HTTP statuses are carried as their decimal string form.
const (
	CodeTransportError = "TRANSPORT_ERROR"
	CodeAuthFailed     = "AUTH_FAILED"
	CodeInternalError  = "INTERNAL_ERROR"
	CodeHostRejected   = "HOST_REJECTED"
)

// Result is the normalized outcome of one protocol-level send attempt.
// Transmitters produce it; the dispatch service consumes it. It is a value
// object and is never persisted directly.
type Result struct {
	Success      bool                   `json:"success"`
	Message      string                 `json:"message"`
	ErrorCode    string                 `json:"error_code,omitempty"`
	ResponseData map[string]interface{} `json:"response_data,omitempty"`
	RawResponse  string                 `json:"raw_response,omitempty"`
}

// Failure builds a failed result with the given message and error code
func Failure(message, errorCode string) *Result {
	return &Result{
		Success:   false,
		Message:   message,
		ErrorCode: errorCode,
	}
}

// HTTPStatus maps the result onto a response status for the inbound API:
// 200 on success, the error code itself when it denotes a valid HTTP error
// status, 500 otherwise.
func (r *Result) HTTPStatus() int {
	if r.Success {
		return http.StatusOK
	}
	if code, err := strconv.Atoi(r.ErrorCode); err == nil && code >= 400 && code < 600 {
		return code
	}
	return http.StatusInternalServerError
}

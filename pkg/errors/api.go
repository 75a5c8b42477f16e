package errors

import "fmt"

/*
APIError is the body returned by the HTTP layer for requests it rejects
before they reach the assistant.
*/
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

var (
	ErrBadRequest   = &APIError{Code: 400, Message: "Bad request"}
	ErrUnauthorized = &APIError{Code: 401, Message: "Unauthorized"}
	ErrNotFound     = &APIError{Code: 404, Message: "Not found"}
	ErrRateLimited  = &APIError{Code: 429, Message: "Rate limit exceeded"}
	ErrInternal     = &APIError{Code: 500, Message: "Internal error"}
)

// WithMessagef creates a *copy* of an APIError with a formatted message.
// It does not modify the original error variable.
func (e *APIError) WithMessagef(format string, args ...any) *APIError {
	newErr := *e
	newErr.Message = fmt.Sprintf(format, args...)
	return &newErr
}

// WithData returns a copy carrying extra detail, such as validation output.
func (e *APIError) WithData(data any) *APIError {
	newErr := *e
	newErr.Data = data
	return &newErr
}

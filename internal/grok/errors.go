package grok

import (
	"fmt"

	"github.com/tidwall/gjson"
)

const maxErrorBody = 4096

// StatusError is a non-2xx response from the API.
type StatusError struct {
	StatusCode int
	Status     string
	// Message is the API's own error description, when the body carries one.
	Message string
	// Body is the response body, truncated.
	Body string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("grok api returned %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("grok api returned %s", e.Status)
}

// RequestError is a failure to complete the HTTP exchange: connection errors,
// timeouts and unreadable bodies.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("grok request failed: %v", e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// DecodeError is a 2xx response whose body is not valid JSON.
type DecodeError struct {
	Err  error
	Body string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode grok response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func newStatusError(code int, status string, body []byte) *StatusError {
	return &StatusError{
		StatusCode: code,
		Status:     status,
		Message:    extractErrorMessage(body),
		Body:       truncate(body),
	}
}

// extractErrorMessage understands both {"error":"..."} and
// {"error":{"message":"..."}} bodies.
func extractErrorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	if msg := gjson.GetBytes(body, "error.message"); msg.Type == gjson.String {
		return msg.String()
	}
	if msg := gjson.GetBytes(body, "error"); msg.Type == gjson.String {
		return msg.String()
	}
	return ""
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody])
	}
	return string(body)
}

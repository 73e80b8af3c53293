package api

import (
	"encoding/json"
	"fmt"
)

// ServerError is a non-2xx reply from the enrollment service, decoded from
// the error body when possible. The enrollment engine passes it through to
// the caller untouched.
type ServerError struct {
	StatusCode int    `json:"-"`
	ErrorCode  string `json:"errorCode"`
	Message    string `json:"message"`
}

func newServerError(statusCode int, body []byte) *ServerError {
	se := &ServerError{StatusCode: statusCode}
	// Undecodable bodies degrade to a bare status error.
	_ = json.Unmarshal(body, se)
	return se
}

func (e *ServerError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("api: %s (%s)", e.Message, e.ErrorCode)
	}
	return fmt.Sprintf("api: request failed with status %d", e.StatusCode)
}

package poster

import (
	"errors"
	"fmt"
)

// APIError is an explicit error envelope returned by the Poster API.
type APIError struct {
	Message string `json:"message"`
	Code    int    `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("poster api error %d: %s", e.Code, e.Message)
}

// IsAPIError reports whether err is an APIError (even when wrapped).
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// MalformedResponseError is returned when a response matches neither the
// success nor the error envelope shape, or a record is missing a required
// field. It is fatal for the fetch that produced it.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return "poster: malformed response: " + e.Reason
}

// IsMalformedResponseError reports whether err is a MalformedResponseError.
func IsMalformedResponseError(err error) bool {
	var malErr *MalformedResponseError
	return errors.As(err, &malErr)
}

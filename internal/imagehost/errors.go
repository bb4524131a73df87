package imagehost

import (
	"errors"
	"fmt"
)

var (
	ErrDisabled     = errors.New("image host is not configured")
	ErrInvalidToken = errors.New("image host rejected the token")
	ErrEmptyFile    = errors.New("file is empty")
	ErrFileTooLarge = errors.New("file exceeds the upload limit")
	ErrNotImage     = errors.New("file is not a recognised image")
)

// APIError is a non-200 response or a {"status": false} body from the host.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("image host error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("image host error (status %d): %s", e.StatusCode, e.Message)
}

package components

import (
	"net/http"

	"github.com/pkg/errors"
)

// ErrWithStatus carries an HTTP status code alongside an error so shared
// validation code can decide the response class.
type ErrWithStatus struct {
	err    error
	status int
}

func (e *ErrWithStatus) Error() string {
	return e.err.Error()
}

// NewErr wraps an error with an HTTP status.
func NewErr(status int, err error) error {
	return &ErrWithStatus{
		err:    err,
		status: status,
	}
}

// ErrWrap wraps an error with a message and an HTTP status, passing through
// nil.
func ErrWrap(status int, err error, message string) error {
	if err == nil {
		return nil
	}
	return &ErrWithStatus{
		err:    errors.Wrap(err, message),
		status: status,
	}
}

// ErrWrapf is ErrWrap with a format string.
func ErrWrapf(status int, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ErrWithStatus{
		err:    errors.Wrapf(err, format, args...),
		status: status,
	}
}

// ErrToStatus extracts the HTTP status from an error chain, defaulting to 500.
func ErrToStatus(err error) int {
	statusErr := &ErrWithStatus{}
	if errors.As(err, &statusErr) {
		return statusErr.status
	}
	return http.StatusInternalServerError
}

package store

import (
	"errors"
	"fmt"
)

var (
	// ErrGatewayUnavailable is returned when a gateway decorator has nothing to delegate to.
	ErrGatewayUnavailable = errors.New("store gateway unavailable")
	// ErrEmptyQuery is returned for a descriptor without a status filter.
	ErrEmptyQuery = errors.New("query has no status filter")
)

// ThrottledError captures a store call that was refused or delayed past its deadline
// because of throughput limits.
type ThrottledError struct {
	Gateway string
	Group   string
	Err     error
}

func (e *ThrottledError) Error() string {
	msg := "store throttled"
	if e.Gateway != "" {
		msg = fmt.Sprintf("%s (gateway=%s)", msg, e.Gateway)
	}
	if e.Group != "" {
		msg = fmt.Sprintf("%s (group=%s)", msg, e.Group)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ThrottledError) Unwrap() error {
	return e.Err
}

// AsThrottledError attempts to unwrap an error into a ThrottledError.
func AsThrottledError(err error) (*ThrottledError, bool) {
	var tErr *ThrottledError
	if errors.As(err, &tErr) {
		return tErr, true
	}
	return nil, false
}

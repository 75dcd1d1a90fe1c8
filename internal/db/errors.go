package db

import (
	"errors"
	"fmt"
)

var (
	// ErrRemoteUnavailable means the hosted database could not be reached
	// or rejected the credentials.
	ErrRemoteUnavailable = errors.New("remote database unavailable")
	// ErrLocalUnavailable means the local database file could not be opened.
	ErrLocalUnavailable = errors.New("local storage unavailable")
)

// UnavailableError reports a failed backend construction
type UnavailableError struct {
	Target Target
	Err    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.sentinel(), e.Target, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the target's backend kind
func (e *UnavailableError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *UnavailableError) sentinel() error {
	if e.Target.Kind == KindRemote {
		return ErrRemoteUnavailable
	}
	return ErrLocalUnavailable
}

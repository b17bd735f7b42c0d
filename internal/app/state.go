package app

import (
	"errors"

	"ppe-monitor-go/internal/services/credentials"
)

// State is the application lifecycle stage.
type State int

const (
	StateLoggedOut State = iota
	StateRunning
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateLoggedOut:
		return "logged_out"
	case StateRunning:
		return "running"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

var (
	ErrEmptyFields        = credentials.ErrEmptyFields
	ErrInvalidCredentials = credentials.ErrInvalidCredentials
	ErrClosed             = errors.New("application closed")
	ErrNotRunning         = errors.New("application not running")
)

package myerrors

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation covers bad input rejected before any write.
	ErrValidation = errors.New("validation error")
	// ErrStateConflict covers illegal transitions: double-accept, completing
	// from a wrong state, completing twice.
	ErrStateConflict = errors.New("state conflict")
	ErrNotFound      = errors.New("pickup not found")
	// ErrForbidden covers an actor who is not allowed to drive the
	// transition, e.g. a driver touching somebody else's pickup.
	ErrForbidden = errors.New("forbidden")

	ErrInvalidWeight     = fmt.Errorf("%w: weight must be positive", ErrValidation)
	ErrEmptyCategories   = fmt.Errorf("%w: at least one waste category required", ErrValidation)
	ErrDBConnClosed      = errors.New("failed to connect to db")
	ErrBrokerUnavailable = errors.New("message broker unavailable")
)

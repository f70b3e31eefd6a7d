package myerrors

import "errors"

var (
	ErrValidation = errors.New("validation error")
	// ErrEmailRegistered leaks intentionally on register so the client can
	// point the user at login instead.
	ErrEmailRegistered = errors.New("email already registered")
	// ErrUnknownCredentials covers both a missing account and a wrong
	// password, so login failures do not enumerate accounts.
	ErrUnknownCredentials = errors.New("unknown email or password")
)

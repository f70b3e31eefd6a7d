package myerrors

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation error")
	// ErrStateConflict covers illegal fulfilment moves, e.g. delivering a
	// redemption that was never processed.
	ErrStateConflict = errors.New("state conflict")
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")

	// ErrInsufficientBalance rejects a debit that would take the balance
	// below zero. Nothing is written when it fires.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrOutOfStock rejects a redemption of a depleted or inactive item.
	ErrOutOfStock = errors.New("reward out of stock")

	ErrInvalidAmount = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrDBConnClosed  = errors.New("failed to connect to db")
)

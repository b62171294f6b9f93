package shortener

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when a request fails validation before touching storage.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmptyURL is returned when the long URL is blank.
	ErrEmptyURL = fmt.Errorf("%w: long url is empty", ErrInvalidInput)
	// ErrEmptyCode is returned when a lookup is attempted without a code.
	ErrEmptyCode = fmt.Errorf("%w: short code is empty", ErrInvalidInput)
	// ErrInvalidCode is returned when a desired code does not match the configured alphabet.
	ErrInvalidCode = fmt.Errorf("%w: short code does not match alphabet", ErrInvalidInput)

	// ErrCodeAlreadyTaken is returned when the owner already has a mapping with the code.
	// Repositories return it from Insert on a (owner, code) conflict.
	ErrCodeAlreadyTaken = errors.New("short code already taken")
	// ErrCodeSpaceExhausted is returned when no free code was found within the attempt limit.
	ErrCodeSpaceExhausted = errors.New("short code space exhausted")
	// ErrNotFound is returned when the owner has no mapping for the code.
	ErrNotFound = errors.New("url not found")
	// ErrUnauthorized is returned when an operation is attempted without an owner.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrStorage wraps failures of the underlying repository.
	ErrStorage = errors.New("storage failure")
)

func storageError(err error) error {
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

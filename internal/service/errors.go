package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid_input")
	ErrNotFound        = errors.New("not_found")
	ErrConflict        = errors.New("conflict")
	ErrUpstream        = errors.New("upstream_failure")
)

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

// notFound translates a missing row into ErrNotFound and passes other errors through.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s not found", ErrNotFound, what)
	}
	return err
}

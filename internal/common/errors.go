package common

import (
	"errors"
	"fmt"
)

var (

	// lookup errors
	ErrNotFound = errors.New("not found")

	// input errors
	ErrValidationFailed = errors.New("validation failed")
	ErrAlreadyExists    = fmt.Errorf("%w: already exists", ErrValidationFailed)

	// auth errors
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUnauthorized    = errors.New("unauthorized")
)

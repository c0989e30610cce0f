// Package apperr defines the sentinel errors shared by the service layer and
// its transports.
package apperr

import (
	"errors"

	"github.com/starford/formbind/internal/binding"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnknownField  = binding.ErrUnknownField
)

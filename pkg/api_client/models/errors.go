package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateIdentity   = errors.New("duplicate identity hash")
	ErrMissingActorContext = errors.New("no actor available for audit stamping")
	ErrImmutableField      = errors.New("immutable field violation")
	ErrPayloadTooLarge     = errors.New("payload too large")
	ErrValidation          = errors.New("validation failed")
)

// ValidationError names the field and the constraint it violated.
type ValidationError struct {
	Field      string
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Constraint)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ImmutableFieldError is returned when id or hash is changed after creation.
type ImmutableFieldError struct {
	Field string
}

func (e *ImmutableFieldError) Error() string {
	return fmt.Sprintf("%s is immutable after creation", e.Field)
}

func (e *ImmutableFieldError) Is(target error) bool { return target == ErrImmutableField }

// PayloadTooLargeError keeps the offending size for the problem response.
type PayloadTooLargeError struct {
	Size int
	Max  int
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("data is %d bytes, maximum is %d", e.Size, e.Max)
}

func (e *PayloadTooLargeError) Is(target error) bool { return target == ErrPayloadTooLarge }

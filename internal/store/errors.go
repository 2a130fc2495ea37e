package store

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrBackend          = errors.New("backend error")
)

// OpError describes a failed store operation
type OpError struct {
	Op       string
	Resource string
	ID       string
	Kind     error
	Err      error
}

func (e *OpError) Error() string {
	if e == nil {
		return ""
	}
	target := e.Resource
	if e.ID != "" {
		target += " " + e.ID
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v: %v", e.Op, target, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, target, e.Kind)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As
func (e *OpError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func opErr(kind error, op, resource, id string, cause error) error {
	return &OpError{Op: op, Resource: resource, ID: id, Kind: kind, Err: cause}
}

func validationErr(op, resource, id, format string, args ...any) error {
	return opErr(ErrValidation, op, resource, id, fmt.Errorf(format, args...))
}

package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput        = errors.New("no SQL input provided")
	ErrTableNotFound     = errors.New("table not found")
	ErrInvalidParameter  = errors.New("invalid numeric parameter")
	ErrRender            = errors.New("diagram rendering failed")
	ErrUnsupportedSource = errors.New("unsupported DDL source")
)

// ParameterError reports a layout parameter that could not be parsed as a number.
type ParameterError struct {
	Name  string
	Value string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %q is not a valid number", e.Name, e.Value)
}

func (e *ParameterError) Unwrap() error { return ErrInvalidParameter }

// RenderError carries the message produced by a failing rendering backend.
type RenderError struct {
	Backend string
	Message string
	Err     error
}

func (e *RenderError) Error() string {
	if e.Message == "" && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Backend, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Backend, e.Message)
}

// Unwrap exposes both ErrRender and the underlying cause to errors.Is.
func (e *RenderError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRender}
	}
	return []error{ErrRender, e.Err}
}

// TableNotFound wraps ErrTableNotFound with the requested name.
func TableNotFound(name string) error {
	return fmt.Errorf("%w: %s", ErrTableNotFound, name)
}

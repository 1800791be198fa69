package product

import (
	"errors"
	"fmt"
	"strings"
)

const (
	ErrCodeValidationRequired  = "validation.required.error"
	ErrCodeValidationMaxLength = "validation.max-length.error"
	ErrCodeInvalidOperation    = "validation.invalid-operation.error"
	ErrCodeDuplicateTarget     = "validation.duplicate-target.error"
	ErrCodeInvalidGroupBy      = "validation.invalid-group-by.error"
	ErrCodeInvalidRange        = "validation.invalid-range.error"
)

var (
	ErrUnsupportedOperation = errors.New("unsupported bulk operation")
	ErrInvalidFlag          = errors.New("invalid flag column name")
	ErrBatchCancelled       = errors.New("batch cancelled")
)

type ErrorDetail struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationError struct {
	Errors []ErrorDetail `json:"errors"`
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation error"
	}

	messages := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

func (e *ValidationError) Add(detail ErrorDetail) {
	e.Errors = append(e.Errors, detail)
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

func NewValidationError() *ValidationError {
	return &ValidationError{
		Errors: make([]ErrorDetail, 0),
	}
}

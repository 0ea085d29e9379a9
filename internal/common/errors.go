package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error codes carried by AppError.
const (
	CodeSchemaValidationFailed = "schema_validation_failed"
	CodeExtractionFailed       = "extraction_failed"
	CodeInvalidInput           = "invalid_input"
	CodeConfig                 = "config_error"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// GRPCStatus lets status.FromError translate an AppError at the API boundary.
func (e *AppError) GRPCStatus() *status.Status {
	var c codes.Code
	switch e.Code {
	case CodeSchemaValidationFailed, CodeInvalidInput:
		c = codes.InvalidArgument
	case CodeExtractionFailed:
		c = codes.Unavailable
	case CodeConfig:
		c = codes.FailedPrecondition
	default:
		c = codes.Internal
	}
	return status.New(c, e.Error())
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrValidation   = errors.New("validation failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code string) bool {
	var ae *AppError
	return errors.As(err, &ae) && ae.Code == code
}

package serverutils

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// AppError is an error that knows how it should be rendered to HTTP callers.
type AppError struct {
	Code    int
	Message string
	Details string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError reports input the caller can fix and resend immediately.
func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    fiber.StatusBadRequest,
		Message: message,
	}
}

// NewUpstreamError reports a failed call to the generation API.
func NewUpstreamError(message string, err error) *AppError {
	return &AppError{
		Code:    fiber.StatusInternalServerError,
		Message: message,
		Details: errorDetails(err),
		Err:     err,
	}
}

// NewTimeoutError reports a generation call that exceeded its deadline.
func NewTimeoutError(message string, err error) *AppError {
	return &AppError{
		Code:    fiber.StatusGatewayTimeout,
		Message: message,
		Details: errorDetails(err),
		Err:     err,
	}
}

func errorDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

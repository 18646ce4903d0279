package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes used across the workflow layer. Handlers map these onto HTTP
// statuses; nothing more granular is exposed to clients.
const (
	CodeInvalidArgument     = "INVALID_ARGUMENT"
	CodeUploadFailure       = "UPLOAD_FAILURE"
	CodePersistFailure      = "PERSIST_FAILURE"
	CodeUnauthenticated     = "UNAUTHENTICATED"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeNotFound            = "NOT_FOUND"
	CodeProvisioningFailure = "PROVISIONING_FAILURE"
	CodeBackendFailure      = "BACKEND_FAILURE"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
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

// Predefined error constructors
func NewInvalidArgumentError(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidArgument,
		Message: message,
	}
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewUnauthenticatedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthenticated,
		Message: message,
	}
}

// NewUploadFailure wraps a blob store error from the upload or preview
// derivation step of a content workflow.
func NewUploadFailure(err error) *AppError {
	return &AppError{
		Code:    CodeUploadFailure,
		Message: "File upload failed",
		Err:     err,
	}
}

// NewPersistFailure wraps a document store error from the persistence step of
// a content workflow.
func NewPersistFailure(err error) *AppError {
	return &AppError{
		Code:    CodePersistFailure,
		Message: "Failed to persist record",
		Err:     err,
	}
}

// NewProvisioningFailure wraps an error raised while lazily creating a profile
// record for an authenticated identity. Fatal for the login attempt.
func NewProvisioningFailure(err error) *AppError {
	return &AppError{
		Code:    CodeProvisioningFailure,
		Message: "Failed to provision user profile",
		Err:     err,
	}
}

// NewBackendFailure is the generic passthrough for unclassified store errors.
func NewBackendFailure(err error) *AppError {
	return &AppError{
		Code:    CodeBackendFailure,
		Message: "Backend operation failed",
		Err:     err,
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	if appErr, ok := err.(*AppError); ok {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}

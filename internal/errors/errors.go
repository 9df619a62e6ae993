package errors

import "fmt"

// ErrorCode represents a panelist error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"     // 400
	ErrInvalidSelection   ErrorCode = "INVALID_SELECTION"   // 400
	ErrUnknownPersona     ErrorCode = "UNKNOWN_PERSONA"     // 404
	ErrNotFound           ErrorCode = "NOT_FOUND"           // 404
	ErrSessionCompleted   ErrorCode = "SESSION_COMPLETED"   // 409
	ErrCancelled          ErrorCode = "CANCELLED"           // 499
	ErrInternal           ErrorCode = "INTERNAL"            // 500
	ErrGenerationFailed   ErrorCode = "GENERATION_FAILED"   // 502
	ErrBackendUnavailable ErrorCode = "BACKEND_UNAVAILABLE" // 503
)

// PanelError represents a structured error with code, status, and details.
// Cause, when set, is the lower-level error this one wraps.
type PanelError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	Cause   error
}

// Error implements the error interface.
func (e *PanelError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *PanelError) Unwrap() error {
	return e.Cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *PanelError {
	return &PanelError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidSelection creates a 400 error for a rejected menu choice.
// The interactive shell recovers from it by prompting again.
func NewInvalidSelection(msg string) *PanelError {
	return &PanelError{
		Code:    ErrInvalidSelection,
		Status:  400,
		Message: msg,
	}
}

// NewUnknownPersona creates a 404 error for a persona id outside the registry.
func NewUnknownPersona(id string) *PanelError {
	return &PanelError{
		Code:    ErrUnknownPersona,
		Status:  404,
		Message: fmt.Sprintf("unknown persona: %s", id),
		Details: map[string]any{"persona_id": id},
	}
}

// NewNotFound creates a 404 error for when a transcript cannot be found.
func NewNotFound(identifier string) *PanelError {
	return NewNotFoundKind("transcript", identifier)
}

// NewNotFoundKind creates a 404 error for a missing item of the given kind.
func NewNotFoundKind(kind, identifier string) *PanelError {
	return &PanelError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewSessionCompleted creates a 409 error for asking a finalized session.
func NewSessionCompleted(sessionID string) *PanelError {
	return &PanelError{
		Code:    ErrSessionCompleted,
		Status:  409,
		Message: "interview session is already completed",
		Details: map[string]any{"session_id": sessionID},
	}
}

// NewCancelled creates a 499 error when an operation is cancelled.
func NewCancelled(operation string) *PanelError {
	return &PanelError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", operation),
	}
}

// NewBackendUnavailable creates a 503 error for a failed generation call.
// status is the HTTP status returned by the backend, or 0 for transport failures.
func NewBackendUnavailable(status int, msg string, cause error) *PanelError {
	details := map[string]any{"message": msg}
	if status != 0 {
		details["status_code"] = status
	}
	return &PanelError{
		Code:    ErrBackendUnavailable,
		Status:  503,
		Message: fmt.Sprintf("generation backend unavailable: %s", msg),
		Details: details,
		Cause:   cause,
	}
}

// NewGenerationFailed creates a 502 error wrapping a backend failure surfaced
// while asking a question.
func NewGenerationFailed(question string, cause error) *PanelError {
	msg := "generation failed"
	if cause != nil {
		msg = fmt.Sprintf("generation failed: %v", cause)
	}
	return &PanelError{
		Code:    ErrGenerationFailed,
		Status:  502,
		Message: msg,
		Details: map[string]any{"question": question},
		Cause:   cause,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *PanelError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &PanelError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Cause:   err,
	}
}

// Is checks if err, or any error it wraps, is a PanelError with the given code.
// Joined errors are searched branch by branch.
func Is(err error, code ErrorCode) bool {
	switch e := err.(type) {
	case nil:
		return false
	case *PanelError:
		if e.Code == code {
			return true
		}
		return Is(e.Cause, code)
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			if Is(inner, code) {
				return true
			}
		}
		return false
	case interface{ Unwrap() error }:
		return Is(e.Unwrap(), code)
	}
	return false
}

package apperrors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common client-side failure cases.
var (
	ErrMissingCredential  = errors.New("missing auth credential")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMalformedResponse  = errors.New("malformed server response")
	ErrServerError        = errors.New("server error")
	ErrUnexpectedStatus   = errors.New("unexpected response status")
	ErrTransport          = errors.New("transport failure")
	ErrRejected           = errors.New("request rejected")
	ErrSelfChat           = errors.New("self chat not allowed")
	ErrChatCreateFailed   = errors.New("chat creation failed")
	ErrNotFound           = errors.New("resource not found")
)

// AppError represents a structured client error. Code is a stable machine
// token; Message is safe to show to a user; Err carries the sentinel and/or
// the underlying cause for errors.Is / errors.As matching.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// MissingCredential reports a privileged request attempted with no stored
// token. The request must not have reached the network.
func MissingCredential(operation string) *AppError {
	return &AppError{
		Code:    "MISSING_CREDENTIAL",
		Message: fmt.Sprintf("%s requires a signed-in session", operation),
		Err:     ErrMissingCredential,
	}
}

// InvalidCredentials creates the error returned for a 401/4xx login outcome.
func InvalidCredentials() *AppError {
	return &AppError{
		Code:    "INVALID_CREDENTIALS",
		Message: "email or password was not accepted",
		Err:     ErrInvalidCredentials,
	}
}

// ServerError creates the error returned for a 5xx outcome.
func ServerError(status int) *AppError {
	return &AppError{
		Code:    "SERVER_ERROR",
		Message: fmt.Sprintf("server failed with status %d", status),
		Err:     ErrServerError,
	}
}

// MalformedResponse wraps a decode failure on an otherwise successful reply.
func MalformedResponse(cause error) *AppError {
	return &AppError{
		Code:    "MALFORMED_RESPONSE",
		Message: "server reply could not be decoded",
		Err:     errors.Join(ErrMalformedResponse, cause),
	}
}

// SelfChat reports an attempt to open a conversation with oneself.
func SelfChat(userID string) *AppError {
	return &AppError{
		Code:    "SELF_CHAT_NOT_ALLOWED",
		Message: fmt.Sprintf("user %s cannot open a chat with themselves", userID),
		Err:     ErrSelfChat,
	}
}

// ChatCreateFailed wraps any network or decode failure during chat creation.
func ChatCreateFailed(cause error) *AppError {
	return &AppError{
		Code:    "CHAT_CREATE_FAILED",
		Message: "could not create conversation",
		Err:     errors.Join(ErrChatCreateFailed, cause),
	}
}

// Rejected reports a registration (or similar) request the server declined.
func Rejected(detail string) *AppError {
	return &AppError{
		Code:    "REJECTED",
		Message: detail,
		Err:     ErrRejected,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

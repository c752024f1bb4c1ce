package transport

import (
	"fmt"

	"github.com/PeterJohnBishop/go-chat-cli/internal/apperrors"
)

// StatusError reports a completed response whose status code was not the one
// the caller declared as success. The raw body is preserved so callers can
// surface the server's own detail.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Unwrap lets errors.Is match the shared sentinel.
func (e *StatusError) Unwrap() error {
	return apperrors.ErrUnexpectedStatus
}

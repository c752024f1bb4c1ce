package apperrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelMatching(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		code     string
	}{
		{"missing credential", MissingCredential("list users"), ErrMissingCredential, "MISSING_CREDENTIAL"},
		{"invalid credentials", InvalidCredentials(), ErrInvalidCredentials, "INVALID_CREDENTIALS"},
		{"server error", ServerError(502), ErrServerError, "SERVER_ERROR"},
		{"self chat", SelfChat("u1"), ErrSelfChat, "SELF_CHAT_NOT_ALLOWED"},
		{"rejected", Rejected("email taken"), ErrRejected, "REJECTED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)

			var appErr *AppError
			require.ErrorAs(t, tt.err, &appErr)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}
}

func TestWrappersCarryTheCause(t *testing.T) {
	cause := errors.New("connection reset")

	err := ChatCreateFailed(cause)
	assert.ErrorIs(t, err, ErrChatCreateFailed)
	assert.ErrorIs(t, err, cause)

	err = MalformedResponse(cause)
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.ErrorIs(t, err, cause)
}

func TestErrorString(t *testing.T) {
	err := ServerError(503)
	assert.Equal(t, "SERVER_ERROR: server failed with status 503: server error", err.Error())
}

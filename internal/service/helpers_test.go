package service

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/PeterJohnBishop/go-chat-cli/internal/domain"
	"github.com/PeterJohnBishop/go-chat-cli/internal/logger"
	"github.com/PeterJohnBishop/go-chat-cli/internal/session"
	"github.com/PeterJohnBishop/go-chat-cli/internal/transport"
)

func userAda() domain.User {
	return domain.User{ID: "u1", Name: "Ada", Email: "ada@example.com"}
}

func testLogger() *slog.Logger {
	return logger.NewWithWriter("error", io.Discard)
}

// newTransport wires a real transport client against a fake backend with the
// given session store supplying the bearer token.
func newTransport(t *testing.T, srv *httptest.Server, store session.Store) *transport.Client {
	t.Helper()
	return transport.New(transport.Config{
		BaseURL:      srv.URL,
		Timeout:      5 * time.Second,
		MaxRetries:   0,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: time.Millisecond,
	}, store, testLogger())
}

// signedIn returns a store holding a valid session for user u1.
func signedIn(t *testing.T) *session.MemoryStore {
	t.Helper()
	store := session.NewMemoryStore()
	err := store.Save(context.Background(), session.Session{
		Token:        "jwt-u1",
		RefreshToken: "refresh-u1",
		User:         userAda(),
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return store
}

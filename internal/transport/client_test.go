package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PeterJohnBishop/go-chat-cli/internal/apperrors"
	"github.com/PeterJohnBishop/go-chat-cli/internal/logger"
)

// staticToken is a TokenSource with a fixed token; empty means no session.
type staticToken string

func (s staticToken) Token(context.Context) (string, bool, error) {
	return string(s), s != "", nil
}

func testClient(t *testing.T, baseURL string, tokens TokenSource) *Client {
	t.Helper()
	return New(Config{
		BaseURL:      baseURL,
		Timeout:      5 * time.Second,
		MaxRetries:   2,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
	}, tokens, logger.NewWithWriter("error", io.Discard))
}

func TestDoAttachesBearerAndCorrelation(t *testing.T) {
	var gotAuth, gotCorrelation, gotContentType string

	r := chi.NewRouter()
	r.Get("/users/all", func(w http.ResponseWriter, req *http.Request) {
		gotAuth = req.Header.Get("Authorization")
		gotCorrelation = req.Header.Get("X-Correlation-ID")
		gotContentType = req.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message":"ok","users":[]}`))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	client := testClient(t, srv.URL, staticToken("jwt-1"))

	body, err := client.Do(context.Background(), Request{
		Method:       http.MethodGet,
		Path:         "/users/all",
		RequireAuth:  true,
		ExpectStatus: http.StatusOK,
	})
	require.NoError(t, err)
	assert.Contains(t, string(body), "users")
	assert.Equal(t, "Bearer jwt-1", gotAuth)
	assert.NotEmpty(t, gotCorrelation)
	assert.Equal(t, "application/json", gotContentType)
}

func TestDoMissingCredentialFailsBeforeNetwork(t *testing.T) {
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := testClient(t, srv.URL, staticToken(""))

	_, err := client.Do(context.Background(), Request{
		Method:       http.MethodGet,
		Path:         "/chats/all",
		RequireAuth:  true,
		ExpectStatus: http.StatusOK,
	})
	require.ErrorIs(t, err, apperrors.ErrMissingCredential)
	assert.Zero(t, hits.Load(), "request must not reach the network")
}

func TestDoUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"email taken"}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL, staticToken(""))

	_, err := client.Do(context.Background(), Request{
		Method:       http.MethodPost,
		Path:         "/users/new",
		Body:         map[string]string{"email": "a@b.c"},
		ExpectStatus: http.StatusCreated,
	})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusConflict, statusErr.Code)
	assert.Contains(t, string(statusErr.Body), "email taken")
	assert.ErrorIs(t, err, apperrors.ErrUnexpectedStatus)
}

func TestDoSuccessStatusIsPerCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := testClient(t, srv.URL, staticToken(""))

	// A 200 is a failure for a call that declared 201 as success.
	_, err := client.Do(context.Background(), Request{
		Method:       http.MethodPost,
		Path:         "/chats/new",
		ExpectStatus: http.StatusCreated,
	})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusOK, statusErr.Code)
}

func TestDoRetriesIdempotentOn5xx(t *testing.T) {
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message":"ok","chats":[]}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL, staticToken("jwt-1"))

	_, err := client.Do(context.Background(), Request{
		Method:       http.MethodGet,
		Path:         "/chats/all",
		RequireAuth:  true,
		ExpectStatus: http.StatusOK,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestDoNeverRetriesPost(t *testing.T) {
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := testClient(t, srv.URL, staticToken("jwt-1"))

	_, err := client.Do(context.Background(), Request{
		Method:       http.MethodPost,
		Path:         "/chats/new",
		RequireAuth:  true,
		ExpectStatus: http.StatusCreated,
	})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	assert.Equal(t, int32(1), hits.Load(), "a POST must not be replayed")
}

func TestDoTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // nothing is listening anymore

	client := testClient(t, srv.URL, staticToken(""))

	_, err := client.Do(context.Background(), Request{
		Method:       http.MethodGet,
		Path:         "/users/all",
		ExpectStatus: http.StatusOK,
	})
	require.ErrorIs(t, err, apperrors.ErrTransport)
}

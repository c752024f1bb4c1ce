package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/PeterJohnBishop/go-chat-cli/internal/apperrors"
	"github.com/PeterJohnBishop/go-chat-cli/internal/codec"
	"github.com/PeterJohnBishop/go-chat-cli/internal/domain"
	"github.com/PeterJohnBishop/go-chat-cli/internal/transport"
)

// DirectoryService fetches and caches the user and chat lists for the
// signed-in account. A refresh replaces the cache wholesale, so stale entries
// can not survive one. Cached snapshots are handed out as copies: a resolver
// scanning a snapshot observes either the old or the new list, never a mix.
type DirectoryService struct {
	client transport.Doer
	logger *slog.Logger

	mu    sync.RWMutex
	users []domain.User
	chats []domain.Chat
}

// NewDirectoryService creates a directory service with empty caches.
func NewDirectoryService(client transport.Doer, logger *slog.Logger) *DirectoryService {
	return &DirectoryService{client: client, logger: logger}
}

// ListUsers fetches every user and replaces the cached list.
func (s *DirectoryService) ListUsers(ctx context.Context) ([]domain.User, error) {
	body, err := s.client.Do(ctx, transport.Request{
		Method:       http.MethodGet,
		Path:         "/users/all",
		RequireAuth:  true,
		ExpectStatus: http.StatusOK,
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users, err := codec.DecodeUsers(body)
	if err != nil {
		return nil, apperrors.MalformedResponse(err)
	}

	s.mu.Lock()
	s.users = users
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "user list refreshed", slog.Int("count", len(users)))
	return copyUsers(users), nil
}

// ListChats fetches every chat for the account and replaces the cached list.
func (s *DirectoryService) ListChats(ctx context.Context) ([]domain.Chat, error) {
	body, err := s.client.Do(ctx, transport.Request{
		Method:       http.MethodGet,
		Path:         "/chats/all",
		RequireAuth:  true,
		ExpectStatus: http.StatusOK,
	})
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}

	chats, err := codec.DecodeChats(body)
	if err != nil {
		return nil, apperrors.MalformedResponse(err)
	}

	s.mu.Lock()
	s.chats = chats
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "chat list refreshed", slog.Int("count", len(chats)))
	return copyChats(chats), nil
}

// CachedUsers returns a copy of the last fetched user list.
func (s *DirectoryService) CachedUsers() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUsers(s.users)
}

// CachedChats returns a copy of the last fetched chat list, in the order the
// server returned it.
func (s *DirectoryService) CachedChats() []domain.Chat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyChats(s.chats)
}

// GetUser fetches a single user by ID. The cache is not touched.
func (s *DirectoryService) GetUser(ctx context.Context, id string) (domain.User, error) {
	body, err := s.client.Do(ctx, transport.Request{
		Method:       http.MethodGet,
		Path:         "/users/id/" + url.PathEscape(id),
		Route:        "/users/id/{id}",
		RequireAuth:  true,
		ExpectStatus: http.StatusOK,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("get user %s: %w", id, err)
	}

	user, err := codec.DecodeUser(body)
	if err != nil {
		return domain.User{}, apperrors.MalformedResponse(err)
	}
	return user, nil
}

// UpdateUser sends an updated user record. Callers that need a fresh view
// must re-list; no cache refresh happens here.
func (s *DirectoryService) UpdateUser(ctx context.Context, user domain.User) error {
	_, err := s.client.Do(ctx, transport.Request{
		Method: http.MethodPut,
		Path:   "/users/update",
		Body: codec.UpdateUserBody{
			ID:       user.ID,
			Name:     user.Name,
			Email:    user.Email,
			Password: user.Password,
		},
		RequireAuth:  true,
		ExpectStatus: http.StatusOK,
	})
	if err != nil {
		return fmt.Errorf("update user %s: %w", user.ID, err)
	}
	return nil
}

// DeleteUser deletes the account with the given ID. No cache refresh.
func (s *DirectoryService) DeleteUser(ctx context.Context, id string) error {
	_, err := s.client.Do(ctx, transport.Request{
		Method:       http.MethodDelete,
		Path:         "/users/" + url.PathEscape(id),
		Route:        "/users/{id}",
		RequireAuth:  true,
		ExpectStatus: http.StatusOK,
	})
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return nil
}

func copyUsers(users []domain.User) []domain.User {
	out := make([]domain.User, len(users))
	copy(out, users)
	return out
}

func copyChats(chats []domain.Chat) []domain.Chat {
	out := make([]domain.Chat, len(chats))
	copy(out, chats)
	return out
}

package service

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/PeterJohnBishop/go-chat-cli/internal/apperrors"
	"github.com/PeterJohnBishop/go-chat-cli/internal/codec"
	"github.com/PeterJohnBishop/go-chat-cli/internal/domain"
	"github.com/PeterJohnBishop/go-chat-cli/internal/transport"
)

// ConversationService resolves the canonical chat for an unordered pair of
// users. The server has no get-or-create endpoint, so uniqueness of one chat
// per pair is upheld client-side: a scan of the known chats first, then a
// single-flight creation guard keyed by the sorted participant pair, and a
// memo of this resolver's own creations so re-resolving against a stale
// snapshot never creates a second chat.
type ConversationService struct {
	client transport.Doer
	logger *slog.Logger

	group singleflight.Group

	mu      sync.Mutex
	created map[string]string // participant key -> chat id created by this resolver
}

// NewConversationService creates a conversation resolver.
func NewConversationService(client transport.Doer, logger *slog.Logger) *ConversationService {
	return &ConversationService{
		client:  client,
		logger:  logger,
		created: make(map[string]string),
	}
}

// Resolve returns the id of the one chat connecting currentUserID and
// counterpartID, creating it if no known chat matches. knownChats is the
// caller's snapshot (typically DirectoryService.CachedChats) and is never
// mutated here; after a creation the caller is responsible for refreshing
// the directory so later snapshots contain the new chat.
func (s *ConversationService) Resolve(ctx context.Context, currentUserID, counterpartID string, knownChats []domain.Chat) (string, error) {
	if currentUserID == counterpartID {
		return "", apperrors.SelfChat(currentUserID)
	}

	key := domain.ParticipantKey([]string{currentUserID, counterpartID})

	// Fast path: the pair already has a chat. First match by snapshot order
	// wins; additional matches mean the uniqueness invariant was broken at
	// some point and are worth a warning, not a failure.
	found := ""
	for _, chat := range knownChats {
		if domain.ParticipantKey(chat.Users) != key {
			continue
		}
		if found == "" {
			found = chat.ID
			continue
		}
		s.logger.WarnContext(ctx, "duplicate conversations for participant set",
			slog.String("participants", key),
			slog.String("kept_chat_id", found),
			slog.String("duplicate_chat_id", chat.ID),
		)
	}
	if found != "" {
		return found, nil
	}

	// The snapshot may predate a chat this resolver already created.
	s.mu.Lock()
	if id, ok := s.created[key]; ok {
		s.mu.Unlock()
		return id, nil
	}
	s.mu.Unlock()

	// Slow path: create. Single-flight collapses concurrent misses for the
	// same pair into one POST; every waiter receives the same id.
	id, err, _ := s.group.Do(key, func() (any, error) {
		s.mu.Lock()
		if id, ok := s.created[key]; ok {
			s.mu.Unlock()
			return id, nil
		}
		s.mu.Unlock()

		chatID, err := s.createChat(ctx, currentUserID, counterpartID)
		if err != nil {
			return "", err
		}

		s.mu.Lock()
		s.created[key] = chatID
		s.mu.Unlock()

		s.logger.InfoContext(ctx, "conversation created",
			slog.String("chat_id", chatID),
			slog.String("participants", key),
		)
		return chatID, nil
	})
	if err != nil {
		return "", apperrors.ChatCreateFailed(err)
	}
	return id.(string), nil
}

func (s *ConversationService) createChat(ctx context.Context, currentUserID, counterpartID string) (string, error) {
	body, err := s.client.Do(ctx, transport.Request{
		Method:       http.MethodPost,
		Path:         "/chats/new",
		Body:         codec.NewChatBody{Users: []string{counterpartID, currentUserID}},
		RequireAuth:  true,
		ExpectStatus: http.StatusCreated,
	})
	if err != nil {
		return "", err
	}

	chatID, err := codec.DecodeChatCreated(body)
	if err != nil {
		return "", err
	}
	return chatID, nil
}

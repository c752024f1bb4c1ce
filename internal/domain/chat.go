package domain

import (
	"sort"
	"strings"
)

// Chat represents a conversation between users. The server allocates IDs; the
// client treats them as opaque. For two-party chats the unordered set of user
// IDs is the conversation's logical identity, not the order they appear in.
type Chat struct {
	ID       string   `json:"id"`
	Users    []string `json:"users"`
	Messages []string `json:"messages,omitempty"`
	// Active is the server's last-activity timestamp (unix seconds, may carry
	// a fractional part).
	Active float64 `json:"active"`
}

// ParticipantKey returns a canonical key for an unordered set of user IDs:
// sorted, deduplicated, pipe-joined. Two chats with the same key are the same
// conversation regardless of the order the server listed the users in.
func ParticipantKey(userIDs []string) string {
	seen := make(map[string]struct{}, len(userIDs))
	uniq := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	sort.Strings(uniq)
	return strings.Join(uniq, "|")
}

// HasParticipants reports whether the chat connects exactly the given set of
// users, ignoring order and duplicates on both sides.
func (c Chat) HasParticipants(userIDs ...string) bool {
	return ParticipantKey(c.Users) == ParticipantKey(userIDs)
}

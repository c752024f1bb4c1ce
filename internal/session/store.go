package session

import (
	"context"

	"github.com/PeterJohnBishop/go-chat-cli/internal/domain"
)

// Store persists the session triple. A missing value is reported as
// ok=false with a nil error; only substrate failures produce errors.
type Store interface {
	// Save writes the token, refresh token, and user snapshot atomically:
	// after an error none of the three may have replaced a previous value
	// observably in part.
	Save(ctx context.Context, s Session) error

	// Token returns the stored bearer token, if any.
	Token(ctx context.Context) (string, bool, error)

	// RefreshToken returns the stored refresh token, if any.
	RefreshToken(ctx context.Context) (string, bool, error)

	// CurrentUser returns the stored user snapshot, if any.
	CurrentUser(ctx context.Context) (domain.User, bool, error)

	// Clear removes all three values as a single unit. After Clear returns
	// nil, no load may resolve to a previous value.
	Clear(ctx context.Context) error
}

// Load assembles a full Session from the store. ok is false unless all three
// values are present.
func Load(ctx context.Context, store Store) (Session, bool, error) {
	token, ok, err := store.Token(ctx)
	if err != nil || !ok {
		return Session{}, false, err
	}
	refresh, ok, err := store.RefreshToken(ctx)
	if err != nil || !ok {
		return Session{}, false, err
	}
	user, ok, err := store.CurrentUser(ctx)
	if err != nil || !ok {
		return Session{}, false, err
	}
	return Session{Token: token, RefreshToken: refresh, User: user}, true, nil
}

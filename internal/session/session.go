// Package session persists the signed-in state: the bearer token, the refresh
// token, and a snapshot of the current user. The three values are written and
// cleared as one unit behind fixed key constants, so a clear always removes
// exactly what a save wrote.
package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/PeterJohnBishop/go-chat-cli/internal/domain"
)

// Substrate keys. Every implementation uses these and only these.
const (
	keyToken        = "auth_token"
	keyRefreshToken = "refresh_token"
	keyCurrentUser  = "current_user"
)

// Session is the triple created by a successful login and destroyed by logout.
type Session struct {
	Token        string
	RefreshToken string
	User         domain.User
}

// Claims parses the bearer token's JWT claims without verifying the
// signature. Verification belongs to the server; the client only reads
// timestamps and identity hints.
func (s Session) Claims() (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// TokenExpired reports whether the bearer token's exp claim has passed. An
// opaque token, or one without an exp claim, is reported as not expired;
// the server remains the authority either way.
func (s Session) TokenExpired(now time.Time) bool {
	claims, err := s.Claims()
	if err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}

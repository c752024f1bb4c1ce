// Package service implements the client's business logic on top of the
// transport adapter and the session store: authentication, the user/chat
// directory, and conversation resolution.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/PeterJohnBishop/go-chat-cli/internal/apperrors"
	"github.com/PeterJohnBishop/go-chat-cli/internal/codec"
	"github.com/PeterJohnBishop/go-chat-cli/internal/domain"
	"github.com/PeterJohnBishop/go-chat-cli/internal/session"
	"github.com/PeterJohnBishop/go-chat-cli/internal/transport"
	"github.com/PeterJohnBishop/go-chat-cli/internal/validator"
)

// AuthService owns registration, login, and logout.
type AuthService struct {
	client   transport.Doer
	sessions session.Store
	logger   *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(client transport.Doer, sessions session.Store, logger *slog.Logger) *AuthService {
	return &AuthService{client: client, sessions: sessions, logger: logger}
}

// RegisterInput holds the parameters for registering a new account.
type RegisterInput struct {
	Name     string `validate:"required,min=1,max=100"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

// LoginInput holds the parameters for signing in.
type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Register creates a new account. Success is determined solely by the 201
// expected-status check; no response body is required.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) error {
	if err := validator.Validate(input); err != nil {
		return err
	}

	_, err := s.client.Do(ctx, transport.Request{
		Method:       http.MethodPost,
		Path:         "/users/new",
		Body:         codec.RegisterBody{Name: input.Name, Email: input.Email, Password: input.Password},
		ExpectStatus: http.StatusCreated,
	})
	if err != nil {
		var statusErr *transport.StatusError
		if errors.As(err, &statusErr) {
			return apperrors.Rejected(fmt.Sprintf("registration declined with status %d", statusErr.Code))
		}
		return fmt.Errorf("register: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", slog.String("email", input.Email))
	return nil
}

// Login authenticates and, on success, persists the token, refresh token, and
// user snapshot as one atomic unit. A reply that decodes only partially saves
// nothing: no token without a user and no user without a token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (domain.User, error) {
	if err := validator.Validate(input); err != nil {
		return domain.User{}, err
	}

	body, err := s.client.Do(ctx, transport.Request{
		Method:       http.MethodPost,
		Path:         "/users/login",
		Body:         codec.LoginBody{Email: input.Email, Password: input.Password},
		ExpectStatus: http.StatusOK,
	})
	if err != nil {
		var statusErr *transport.StatusError
		if errors.As(err, &statusErr) {
			switch {
			case statusErr.Code >= 500:
				return domain.User{}, apperrors.ServerError(statusErr.Code)
			default:
				return domain.User{}, apperrors.InvalidCredentials()
			}
		}
		return domain.User{}, fmt.Errorf("login: %w", err)
	}

	resp, err := codec.DecodeLogin(body)
	if err != nil {
		return domain.User{}, apperrors.MalformedResponse(err)
	}

	if err := s.sessions.Save(ctx, session.Session{
		Token:        resp.Token,
		RefreshToken: resp.RefreshToken,
		User:         resp.User,
	}); err != nil {
		return domain.User{}, fmt.Errorf("persist session: %w", err)
	}

	s.logger.InfoContext(ctx, "user signed in", slog.String("user_id", resp.User.ID))
	return resp.User, nil
}

// Logout clears the persisted session. It has no network effect: the server
// keeps no session state the client could tear down.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.logger.InfoContext(ctx, "user signed out")
	return nil
}

// Package codec converts wire JSON to and from the client's domain model.
// Decoders are pure and strict: a payload missing a required field fails with
// a DecodeError naming the field's path instead of yielding a half-populated
// struct. Field names follow the server's convention (snake_case, plus the
// literal "chat.id" key in the chat-creation reply), which differs from the
// client's.
package codec

import (
	"encoding/json"
	"fmt"

	"github.com/PeterJohnBishop/go-chat-cli/internal/domain"
)

// DecodeError reports a malformed or incomplete payload. Path identifies the
// offending field ("user.email", "chats[2].id"); Reason says what was wrong.
type DecodeError struct {
	Path   string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Path, e.Reason)
}

func missing(path string) error {
	return &DecodeError{Path: path, Reason: "required field is missing"}
}

// --- Wire shapes ---
// Pointer fields distinguish "absent" from zero values so incomplete payloads
// are rejected rather than defaulted.

type wireUser struct {
	ID    *string `json:"id"`
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (w wireUser) toDomain(path string) (domain.User, error) {
	if w.ID == nil {
		return domain.User{}, missing(path + ".id")
	}
	if w.Name == nil {
		return domain.User{}, missing(path + ".name")
	}
	if w.Email == nil {
		return domain.User{}, missing(path + ".email")
	}
	return domain.User{ID: *w.ID, Name: *w.Name, Email: *w.Email}, nil
}

type wireChat struct {
	ID       *string   `json:"id"`
	Users    *[]string `json:"users"`
	Messages []string  `json:"messages"`
	Active   *float64  `json:"active"`
}

func (w wireChat) toDomain(path string) (domain.Chat, error) {
	if w.ID == nil {
		return domain.Chat{}, missing(path + ".id")
	}
	if w.Users == nil {
		return domain.Chat{}, missing(path + ".users")
	}
	if w.Active == nil {
		return domain.Chat{}, missing(path + ".active")
	}
	return domain.Chat{ID: *w.ID, Users: *w.Users, Messages: w.Messages, Active: *w.Active}, nil
}

// --- Response envelopes ---

// LoginResponse is the decoded body of POST /users/login.
type LoginResponse struct {
	Message      string
	RefreshToken string
	Token        string
	User         domain.User
}

// DecodeLogin decodes the login envelope. All four fields are required; a
// token without a user (or vice versa) is rejected so the session can never
// be saved partially.
func DecodeLogin(data []byte) (LoginResponse, error) {
	var wire struct {
		Message      *string   `json:"message"`
		RefreshToken *string   `json:"refresh_token"`
		Token        *string   `json:"token"`
		User         *wireUser `json:"user"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return LoginResponse{}, &DecodeError{Path: "$", Reason: err.Error()}
	}
	if wire.Message == nil {
		return LoginResponse{}, missing("message")
	}
	if wire.RefreshToken == nil {
		return LoginResponse{}, missing("refresh_token")
	}
	if wire.Token == nil {
		return LoginResponse{}, missing("token")
	}
	if wire.User == nil {
		return LoginResponse{}, missing("user")
	}
	user, err := wire.User.toDomain("user")
	if err != nil {
		return LoginResponse{}, err
	}
	return LoginResponse{
		Message:      *wire.Message,
		RefreshToken: *wire.RefreshToken,
		Token:        *wire.Token,
		User:         user,
	}, nil
}

// DecodeUsers decodes the GET /users/all envelope.
func DecodeUsers(data []byte) ([]domain.User, error) {
	var wire struct {
		Message *string     `json:"message"`
		Users   *[]wireUser `json:"users"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, &DecodeError{Path: "$", Reason: err.Error()}
	}
	if wire.Users == nil {
		return nil, missing("users")
	}
	users := make([]domain.User, 0, len(*wire.Users))
	for i, wu := range *wire.Users {
		u, err := wu.toDomain(fmt.Sprintf("users[%d]", i))
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// DecodeChats decodes the GET /chats/all envelope.
func DecodeChats(data []byte) ([]domain.Chat, error) {
	var wire struct {
		Message *string     `json:"message"`
		Chats   *[]wireChat `json:"chats"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, &DecodeError{Path: "$", Reason: err.Error()}
	}
	if wire.Chats == nil {
		return nil, missing("chats")
	}
	chats := make([]domain.Chat, 0, len(*wire.Chats))
	for i, wc := range *wire.Chats {
		c, err := wc.toDomain(fmt.Sprintf("chats[%d]", i))
		if err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, nil
}

// DecodeUser decodes a single User body (GET /users/id/{id}).
func DecodeUser(data []byte) (domain.User, error) {
	var wire wireUser
	if err := json.Unmarshal(data, &wire); err != nil {
		return domain.User{}, &DecodeError{Path: "$", Reason: err.Error()}
	}
	return wire.toDomain("user")
}

// DecodeChatCreated decodes the POST /chats/new reply. The server puts the
// new chat's ID under the literal object key "chat.id".
func DecodeChatCreated(data []byte) (string, error) {
	var wire struct {
		Message *string `json:"message"`
		ChatID  *string `json:"chat.id"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return "", &DecodeError{Path: "$", Reason: err.Error()}
	}
	if wire.ChatID == nil {
		return "", missing("chat.id")
	}
	return *wire.ChatID, nil
}

// --- Request bodies ---
// Structs (not ad hoc maps) so every call site sends the same field set in
// declaration order.

// RegisterBody is the POST /users/new request body.
type RegisterBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginBody is the POST /users/login request body.
type LoginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserBody is the PUT /users/update request body.
type UpdateUserBody struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

// NewChatBody is the POST /chats/new request body. The order of the user IDs
// is not meaningful to the server; set equality identifies the conversation.
type NewChatBody struct {
	Users []string `json:"users"`
}

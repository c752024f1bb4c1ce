package domain

// User represents a registered account on the chat server.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	// Password is only populated for outgoing register/update requests and is
	// never stored in the session snapshot.
	Password string `json:"password,omitempty"`
}

// Redacted returns a copy safe to persist or log: the password is dropped.
func (u User) Redacted() User {
	u.Password = ""
	return u
}

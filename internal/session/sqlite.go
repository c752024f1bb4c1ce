package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/PeterJohnBishop/go-chat-cli/internal/domain"
)

// SQLiteStore persists the session in a single-table SQLite database so it
// survives between command invocations.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the session database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create session dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS session (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("init session schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save writes the session triple in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, sess Session) error {
	userJSON, err := json.Marshal(sess.User.Redacted())
	if err != nil {
		return fmt.Errorf("encode current user: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	for key, value := range map[string]string{
		keyToken:        sess.Token,
		keyRefreshToken: sess.RefreshToken,
		keyCurrentUser:  string(userJSON),
	} {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO session(key, value) VALUES(?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, value,
		); err != nil {
			return fmt.Errorf("save session %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func (s *SQLiteStore) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM session WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load session %s: %w", key, err)
	}
	return value, true, nil
}

// Token returns the stored bearer token, if any.
func (s *SQLiteStore) Token(ctx context.Context) (string, bool, error) {
	return s.get(ctx, keyToken)
}

// RefreshToken returns the stored refresh token, if any.
func (s *SQLiteStore) RefreshToken(ctx context.Context) (string, bool, error) {
	return s.get(ctx, keyRefreshToken)
}

// CurrentUser returns the stored user snapshot, if any.
func (s *SQLiteStore) CurrentUser(ctx context.Context) (domain.User, bool, error) {
	value, ok, err := s.get(ctx, keyCurrentUser)
	if err != nil || !ok {
		return domain.User{}, false, err
	}
	var user domain.User
	if err := json.Unmarshal([]byte(value), &user); err != nil {
		return domain.User{}, false, fmt.Errorf("decode current user: %w", err)
	}
	return user, true, nil
}

// Clear removes every session row in one statement, so no load that runs
// after a successful Clear can see a previous value.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

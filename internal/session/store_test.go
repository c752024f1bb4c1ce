package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PeterJohnBishop/go-chat-cli/internal/domain"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := OpenSQLite(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func testSession() Session {
	return Session{
		Token:        "jwt-1",
		RefreshToken: "refresh-1",
		User:         domain.User{ID: "u1", Name: "Ada", Email: "ada@example.com"},
	}
}

func TestStoreSaveAndLoad(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Save(ctx, testSession()))

			token, ok, err := store.Token(ctx)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "jwt-1", token)

			refresh, ok, err := store.RefreshToken(ctx)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "refresh-1", refresh)

			user, ok, err := store.CurrentUser(ctx)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "u1", user.ID)
			assert.Equal(t, "ada@example.com", user.Email)
		})
	}
}

func TestStoreMissingValues(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := store.Token(ctx)
			require.NoError(t, err)
			assert.False(t, ok, "missing token is absent, not an error")

			_, ok, err = store.RefreshToken(ctx)
			require.NoError(t, err)
			assert.False(t, ok)

			_, ok, err = store.CurrentUser(ctx)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStoreClearRemovesAll(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Save(ctx, testSession()))
			require.NoError(t, store.Clear(ctx))

			_, ok, err := store.Token(ctx)
			require.NoError(t, err)
			assert.False(t, ok)

			_, ok, err = store.RefreshToken(ctx)
			require.NoError(t, err)
			assert.False(t, ok)

			_, ok, err = store.CurrentUser(ctx)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStoreSaveOverwrites(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Save(ctx, testSession()))

			second := Session{
				Token:        "jwt-2",
				RefreshToken: "refresh-2",
				User:         domain.User{ID: "u2", Name: "Grace", Email: "grace@example.com"},
			}
			require.NoError(t, store.Save(ctx, second))

			token, _, err := store.Token(ctx)
			require.NoError(t, err)
			assert.Equal(t, "jwt-2", token)

			user, _, err := store.CurrentUser(ctx)
			require.NoError(t, err)
			assert.Equal(t, "u2", user.ID)
		})
	}
}

func TestStoreNeverPersistsPassword(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sess := testSession()
			sess.User.Password = "hunter22"
			require.NoError(t, store.Save(ctx, sess))

			user, ok, err := store.CurrentUser(ctx)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Empty(t, user.Password)
		})
	}
}

func TestLoadHelper(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, ok, err := Load(ctx, store)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, testSession()))

	sess, ok, err := Load(ctx, store)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "jwt-1", sess.Token)
	assert.Equal(t, "u1", sess.User.ID)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	store, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, testSession()))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	token, ok, err := reopened.Token(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "jwt-1", token)
}

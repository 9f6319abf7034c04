package repository

import (
	"context"
	"testing"

	"github.com/goliatone/go-skillsprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSessionStore(t *testing.T) (*SessionStore, func()) {
	db, err := Open(":memory:")
	require.NoError(t, err)

	store := NewSessionStore(db)
	require.NoError(t, store.EnsureSchema(context.Background()))

	cleanup := func() {
		_ = db.Close()
	}
	return store, cleanup
}

func TestSessionStoreGetMissingKey(t *testing.T) {
	store, cleanup := setupSessionStore(t)
	defer cleanup()

	value, err := store.Get(context.Background(), skillsprint.KeyToken)
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestSessionStoreSetOverwrites(t *testing.T) {
	store, cleanup := setupSessionStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, skillsprint.KeyToken, "first"))
	require.NoError(t, store.Set(ctx, skillsprint.KeyToken, "second"))

	value, err := store.Get(ctx, skillsprint.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "second", value)
}

func TestSessionStoreClearRemovesSessionKeysOnly(t *testing.T) {
	store, cleanup := setupSessionStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, skillsprint.KeyToken, "tok"))
	require.NoError(t, store.Set(ctx, skillsprint.KeyRole, "ADMIN"))
	require.NoError(t, store.Set(ctx, skillsprint.KeyUsername, "alice"))
	require.NoError(t, store.Set(ctx, "theme", "dark"))

	require.NoError(t, store.Clear(ctx))

	for _, key := range skillsprint.SessionKeys {
		value, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Empty(t, value, key)
	}

	theme, err := store.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", theme)
}

func TestSessionStoreBacksAutherAcrossRestart(t *testing.T) {
	store, cleanup := setupSessionStore(t)
	defer cleanup()

	ctx := context.Background()
	first := skillsprint.NewAuther(store).WithLogger(skillsprint.NoopLogger())
	first.Init(ctx)
	_, err := first.Login(ctx, "opaque-token", "ADMIN", "root")
	require.NoError(t, err)

	second := skillsprint.NewAuther(store).WithLogger(skillsprint.NoopLogger())
	second.Init(ctx)

	user := second.User()
	require.NotNil(t, user)
	assert.Equal(t, "opaque-token", user.Token)
	assert.Equal(t, skillsprint.RoleAdmin, user.Role)
	assert.Equal(t, "root", user.Username)
	assert.True(t, second.IsAdmin())

	require.NoError(t, second.Logout(ctx))

	third := skillsprint.NewAuther(store).WithLogger(skillsprint.NoopLogger())
	third.Init(ctx)
	assert.Nil(t, third.User())
}

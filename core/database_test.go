package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todo-manager/v2/internal/auth"
)

func openDatabase(t *testing.T, dir string) *Database {
	t.Helper()
	db, err := NewDatabase(dir, "")
	require.NoError(t, err)
	require.NoError(t, db.Connect())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDatabaseTokenRoundTrip(t *testing.T) {
	db := openDatabase(t, t.TempDir())

	token, err := db.LoadToken()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, db.SaveToken("first"))
	require.NoError(t, db.SaveToken("second"))
	token, err = db.LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "second", token)

	require.NoError(t, db.ClearToken())
	token, err = db.LoadToken()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestDatabaseSessionSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	first := openDatabase(t, dir)
	session := auth.NewSession(first)
	require.NoError(t, session.Start("opaque-token"))
	require.NoError(t, first.Close())

	second := openDatabase(t, dir)
	restored := auth.NewSession(second)
	assert.True(t, restored.Restore())
	assert.Equal(t, "opaque-token", restored.Token())

	require.NoError(t, restored.End())
	token, err := second.LoadToken()
	require.NoError(t, err)
	assert.Empty(t, token)
}

package inmemory

import (
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncroom/server/internal/repository/connection"
)

func TestRegisterBindRemove(t *testing.T) {
	repo := NewRepo()
	conn := &websocket.Conn{}

	require.NoError(t, repo.Add(conn))
	assert.ErrorIs(t, repo.Add(conn), connection.ErrAlreadyExists)

	_, _, err := repo.GetBinding(conn)
	assert.ErrorIs(t, err, connection.ErrNotBound)

	require.NoError(t, repo.Bind(conn, "abc", "a"))

	roomId, memberId, err := repo.GetBinding(conn)
	require.NoError(t, err)
	assert.Equal(t, "abc", roomId)
	assert.Equal(t, "a", memberId)

	got, err := repo.GetConn("abc", "a")
	require.NoError(t, err)
	assert.Same(t, conn, got)

	roomId, memberId, err = repo.Remove(conn)
	require.NoError(t, err)
	assert.Equal(t, "abc", roomId)
	assert.Equal(t, "a", memberId)

	// no record survives removal
	_, _, err = repo.GetBinding(conn)
	assert.ErrorIs(t, err, connection.ErrNotFound)
	_, err = repo.GetConn("abc", "a")
	assert.ErrorIs(t, err, connection.ErrNotFound)
}

func TestBindRejectsSecondRoom(t *testing.T) {
	repo := NewRepo()
	conn := &websocket.Conn{}

	require.NoError(t, repo.Add(conn))
	require.NoError(t, repo.Bind(conn, "abc", "a"))

	assert.ErrorIs(t, repo.Bind(conn, "xyz", "a"), connection.ErrAlreadyBound)

	// same room rebind replaces the member identity
	require.NoError(t, repo.Bind(conn, "abc", "a2"))
	_, err := repo.GetConn("abc", "a")
	assert.ErrorIs(t, err, connection.ErrNotFound)
	got, err := repo.GetConn("abc", "a2")
	require.NoError(t, err)
	assert.Same(t, conn, got)
}

func TestUnbindKeepsRegistration(t *testing.T) {
	repo := NewRepo()
	conn := &websocket.Conn{}

	require.NoError(t, repo.Add(conn))

	_, _, err := repo.Unbind(conn)
	assert.ErrorIs(t, err, connection.ErrNotBound)

	require.NoError(t, repo.Bind(conn, "abc", "a"))

	roomId, memberId, err := repo.Unbind(conn)
	require.NoError(t, err)
	assert.Equal(t, "abc", roomId)
	assert.Equal(t, "a", memberId)

	// still registered, free to bind elsewhere
	require.NoError(t, repo.Bind(conn, "xyz", "a"))
}

func TestRemoveUnboundConn(t *testing.T) {
	repo := NewRepo()
	conn := &websocket.Conn{}

	_, _, err := repo.Remove(conn)
	assert.ErrorIs(t, err, connection.ErrNotFound)

	require.NoError(t, repo.Add(conn))

	roomId, memberId, err := repo.Remove(conn)
	require.NoError(t, err)
	assert.Empty(t, roomId)
	assert.Empty(t, memberId)
}

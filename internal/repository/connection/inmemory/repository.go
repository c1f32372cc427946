// Package inmemory tracks live websocket connections and the single room
// each one is currently bound to. Keyed by the connection handle; a removed
// connection leaves no record behind.
package inmemory

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/syncroom/server/internal/repository/connection"
)

type binding struct {
	roomId   string
	memberId string
}

type memberKey struct {
	roomId   string
	memberId string
}

type repo struct {
	conns    map[*websocket.Conn]*binding
	byMember map[memberKey]*websocket.Conn
	mu       sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		conns:    make(map[*websocket.Conn]*binding),
		byMember: make(map[memberKey]*websocket.Conn),
	}
}

// Add registers a connection with no room binding yet.
func (r *repo) Add(conn *websocket.Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[conn]; ok {
		return connection.ErrAlreadyExists
	}

	r.conns[conn] = nil

	return nil
}

// Bind records the connection's current room and member identity. Binding
// while bound to a different room is rejected; the caller must run the leave
// path for the previous room first. Rebinding within the same room replaces
// the member identity.
func (r *repo) Bind(conn *websocket.Conn, roomId, memberId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.conns[conn]
	if !ok {
		return connection.ErrNotFound
	}

	if b != nil {
		if b.roomId != roomId {
			return connection.ErrAlreadyBound
		}
		delete(r.byMember, memberKey{roomId: b.roomId, memberId: b.memberId})
	}

	r.conns[conn] = &binding{roomId: roomId, memberId: memberId}
	r.byMember[memberKey{roomId: roomId, memberId: memberId}] = conn

	return nil
}

// Unbind clears the connection's room binding and returns what it was bound
// to. The connection itself stays registered.
func (r *repo) Unbind(conn *websocket.Conn) (string, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.conns[conn]
	if !ok {
		return "", "", connection.ErrNotFound
	}

	if b == nil {
		return "", "", connection.ErrNotBound
	}

	delete(r.byMember, memberKey{roomId: b.roomId, memberId: b.memberId})
	r.conns[conn] = nil

	return b.roomId, b.memberId, nil
}

// Remove drops the connection entirely, returning the room and member it was
// bound to. Empty values mean the connection was never bound.
func (r *repo) Remove(conn *websocket.Conn) (string, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.conns[conn]
	if !ok {
		return "", "", connection.ErrNotFound
	}

	delete(r.conns, conn)
	if b == nil {
		return "", "", nil
	}

	delete(r.byMember, memberKey{roomId: b.roomId, memberId: b.memberId})

	return b.roomId, b.memberId, nil
}

func (r *repo) GetConn(roomId, memberId string) (*websocket.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.byMember[memberKey{roomId: roomId, memberId: memberId}]
	if !ok {
		return nil, connection.ErrNotFound
	}

	return conn, nil
}

func (r *repo) GetBinding(conn *websocket.Conn) (string, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.conns[conn]
	if !ok {
		return "", "", connection.ErrNotFound
	}

	if b == nil {
		return "", "", connection.ErrNotBound
	}

	return b.roomId, b.memberId, nil
}

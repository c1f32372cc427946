// Package room implements the room-synchronization core: presence, the
// authoritative playback state per room and transient chat relay. Every
// operation is a local, synchronous state transition; the caller is expected
// to hold the room's exclusive boundary across the mutation and the delivery
// of the returned notifications.
package room

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/syncroom/server/internal/repository/room"
)

var (
	ErrNotInRoom    = errors.New("sender is not in the room")
	ErrRoomNotFound = errors.New("room not found")
)

type iRoomRepo interface {
	// members
	AddMember(context.Context, *room.AddMemberParams) ([]room.Member, error)
	RemoveMember(context.Context, *room.RemoveMemberParams) ([]room.Member, error)
	GetMembers(context.Context, string) ([]room.Member, error)
	GetMember(ctx context.Context, roomId, memberId string) (room.Member, error)
	// player
	SetPlayer(context.Context, *room.SetPlayerParams) (room.Player, error)
	UpdatePlayerState(context.Context, *room.UpdatePlayerStateParams) (room.Player, error)
	GetPlayer(context.Context, string) (room.Player, error)
}

type iConnRepo interface {
	Add(*websocket.Conn) error
	Bind(conn *websocket.Conn, roomId, memberId string) error
	Unbind(*websocket.Conn) (string, string, error)
	Remove(*websocket.Conn) (string, string, error)
	GetConn(roomId, memberId string) (*websocket.Conn, error)
	GetBinding(*websocket.Conn) (string, string, error)
}

type service struct {
	roomRepo iRoomRepo
	connRepo iConnRepo
	logger   *slog.Logger
}

func NewService(roomRepo iRoomRepo, connRepo iConnRepo, logger *slog.Logger) *service {
	return &service{
		roomRepo: roomRepo,
		connRepo: connRepo,
		logger:   logger,
	}
}

// RegisterConn makes a freshly upgraded connection known to the registry. It
// belongs to no room until a join binds it.
func (s service) RegisterConn(ctx context.Context, conn *websocket.Conn) error {
	if err := s.connRepo.Add(conn); err != nil {
		s.logger.InfoContext(ctx, "failed to register conn", "error", err)
		return err
	}

	return nil
}

// GetBoundRoom reports which room the connection is currently bound to.
func (s service) GetBoundRoom(conn *websocket.Conn) (string, bool) {
	roomId, _, err := s.connRepo.GetBinding(conn)
	if err != nil {
		return "", false
	}

	return roomId, true
}

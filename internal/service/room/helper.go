package room

import (
	"context"

	"github.com/gorilla/websocket"

	"github.com/syncroom/server/internal/repository/room"
)

func memberFromRepo(m room.Member) Member {
	return Member{
		Id:          m.Id,
		DisplayName: m.DisplayName,
		AvatarRef:   m.AvatarRef,
	}
}

func membersFromRepo(members []room.Member) []Member {
	list := make([]Member, 0, len(members))
	for _, m := range members {
		list = append(list, memberFromRepo(m))
	}

	return list
}

func playerFromRepo(p room.Player) Player {
	return Player{
		Url:       p.Url,
		Position:  p.Position,
		IsPlaying: p.IsPlaying,
		UpdatedAt: p.UpdatedAt,
	}
}

// getConns resolves the connections of the given members in membership order.
// A member whose connection is already gone is skipped rather than treated as
// an error: broadcast delivery is fire-and-forget.
func (s service) getConns(ctx context.Context, roomId string, members []room.Member, excludeMemberId string) []*websocket.Conn {
	conns := make([]*websocket.Conn, 0, len(members))
	for _, m := range members {
		if m.Id == excludeMemberId {
			continue
		}

		conn, err := s.connRepo.GetConn(roomId, m.Id)
		if err != nil {
			s.logger.DebugContext(ctx, "no conn for member", "room_id", roomId, "member_id", m.Id)
			continue
		}

		conns = append(conns, conn)
	}

	return conns
}

// requireBound verifies the connection is bound to the given room and returns
// its member id.
func (s service) requireBound(conn *websocket.Conn, roomId string) (string, error) {
	boundRoomId, memberId, err := s.connRepo.GetBinding(conn)
	if err != nil || boundRoomId != roomId {
		return "", ErrNotInRoom
	}

	return memberId, nil
}

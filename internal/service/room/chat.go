package room

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type SendMessageParams struct {
	RoomId     string
	Text       string
	SenderConn *websocket.Conn
}

type SendMessageResponse struct {
	Message Message
	// Conns includes the sender: its own message comes back through the same
	// path as everyone else's.
	Conns []*websocket.Conn
}

// SendMessage relays a chat message to the whole room, sender included, with
// a server-stamped timestamp. The core keeps no copy; persistence, if any, is
// the request layer's job.
func (s service) SendMessage(ctx context.Context, params *SendMessageParams) (SendMessageResponse, error) {
	memberId, err := s.requireBound(params.SenderConn, params.RoomId)
	if err != nil {
		return SendMessageResponse{}, err
	}

	member, err := s.roomRepo.GetMember(ctx, params.RoomId, memberId)
	if err != nil {
		return SendMessageResponse{}, fmt.Errorf("failed to get member: %w", err)
	}

	members, err := s.roomRepo.GetMembers(ctx, params.RoomId)
	if err != nil {
		return SendMessageResponse{}, fmt.Errorf("failed to get members: %w", err)
	}

	return SendMessageResponse{
		Message: Message{
			Id:        uuid.NewString(),
			User:      memberFromRepo(member),
			Text:      params.Text,
			Timestamp: time.Now().UTC(),
		},
		Conns: s.getConns(ctx, params.RoomId, members, ""),
	}, nil
}

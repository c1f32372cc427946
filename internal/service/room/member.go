package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/syncroom/server/internal/repository/connection"
	"github.com/syncroom/server/internal/repository/room"
)

type JoinRoomParams struct {
	RoomId     string
	Member     Member
	SenderConn *websocket.Conn
}

type JoinRoomResponse struct {
	// Members is the full membership snapshot taken after the insert, so it
	// always contains the joiner itself.
	Members      []Member
	JoinedMember Member
	// ReplacedMember is the membership the sender previously held in this room
	// under a different id, removed by this join. Nil on a plain join.
	ReplacedMember *Member
	// Conns are the connections of every other member in the room.
	Conns []*websocket.Conn
}

// JoinRoom binds the connection to the room and inserts the member into its
// membership. Joining with an id already present replaces the stored record.
// A rejoin under a new id also removes the sender's previous membership, so a
// member without a connection can never be left behind. The connection must
// not be bound to a different room; the caller resolves that by running
// LeaveRoom for the previous room first.
func (s service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	var replaced *Member
	if boundRoomId, boundMemberId, err := s.connRepo.GetBinding(params.SenderConn); err == nil &&
		boundRoomId == params.RoomId && boundMemberId != params.Member.Id {
		old, err := s.roomRepo.GetMember(ctx, params.RoomId, boundMemberId)
		if err != nil {
			s.logger.InfoContext(ctx, "failed to get replaced member", "error", err)
			return JoinRoomResponse{}, fmt.Errorf("failed to get replaced member: %w", err)
		}
		m := memberFromRepo(old)
		replaced = &m
	}

	if err := s.connRepo.Bind(params.SenderConn, params.RoomId, params.Member.Id); err != nil {
		s.logger.InfoContext(ctx, "failed to bind conn", "error", err)
		return JoinRoomResponse{}, fmt.Errorf("failed to bind conn: %w", err)
	}

	members, err := s.roomRepo.AddMember(ctx, &room.AddMemberParams{
		RoomId: params.RoomId,
		Member: room.Member{
			Id:          params.Member.Id,
			DisplayName: params.Member.DisplayName,
			AvatarRef:   params.Member.AvatarRef,
		},
	})
	if err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to add member: %w", err)
	}

	// The old record goes only after the new one is in, so the membership
	// never passes through zero and playback state survives the id change.
	if replaced != nil {
		members, err = s.roomRepo.RemoveMember(ctx, &room.RemoveMemberParams{
			RoomId:   params.RoomId,
			MemberId: replaced.Id,
		})
		if err != nil {
			return JoinRoomResponse{}, fmt.Errorf("failed to remove replaced member: %w", err)
		}
	}

	return JoinRoomResponse{
		Members:        membersFromRepo(members),
		JoinedMember:   params.Member,
		ReplacedMember: replaced,
		Conns:          s.getConns(ctx, params.RoomId, members, params.Member.Id),
	}, nil
}

type LeaveRoomParams struct {
	RoomId     string
	SenderConn *websocket.Conn
}

type LeaveRoomResponse struct {
	LeftMember Member
	// Members is the snapshot of who remains, rebroadcast to survivors as
	// ground truth rather than relying on deltas alone.
	Members       []Member
	Conns         []*websocket.Conn
	IsRoomDeleted bool
}

// LeaveRoom removes the sender from the room it is bound to and unbinds the
// connection. The connection itself stays registered and may join again.
func (s service) LeaveRoom(ctx context.Context, params *LeaveRoomParams) (LeaveRoomResponse, error) {
	memberId, err := s.requireBound(params.SenderConn, params.RoomId)
	if err != nil {
		return LeaveRoomResponse{}, err
	}

	if _, _, err := s.connRepo.Unbind(params.SenderConn); err != nil {
		s.logger.InfoContext(ctx, "failed to unbind conn", "error", err)
		return LeaveRoomResponse{}, fmt.Errorf("failed to unbind conn: %w", err)
	}

	return s.removeMember(ctx, params.RoomId, memberId)
}

type DisconnectParams struct {
	Conn *websocket.Conn
}

type DisconnectResponse struct {
	WasInRoom     bool
	RoomId        string
	LeftMember    Member
	Members       []Member
	Conns         []*websocket.Conn
	IsRoomDeleted bool
}

// Disconnect drops the connection from the registry and, if it was bound to a
// room, runs the same removal path as an explicit leave. This is the cleanup
// path for transport failure, so a connection that was never bound is a
// no-op, not an error.
func (s service) Disconnect(ctx context.Context, params *DisconnectParams) (DisconnectResponse, error) {
	roomId, memberId, err := s.connRepo.Remove(params.Conn)
	if err != nil {
		if errors.Is(err, connection.ErrNotFound) {
			return DisconnectResponse{}, nil
		}
		return DisconnectResponse{}, fmt.Errorf("failed to remove conn: %w", err)
	}

	if roomId == "" {
		return DisconnectResponse{}, nil
	}

	leaveResp, err := s.removeMember(ctx, roomId, memberId)
	if err != nil {
		return DisconnectResponse{}, err
	}

	return DisconnectResponse{
		WasInRoom:     true,
		RoomId:        roomId,
		LeftMember:    leaveResp.LeftMember,
		Members:       leaveResp.Members,
		Conns:         leaveResp.Conns,
		IsRoomDeleted: leaveResp.IsRoomDeleted,
	}, nil
}

func (s service) removeMember(ctx context.Context, roomId, memberId string) (LeaveRoomResponse, error) {
	member, err := s.roomRepo.GetMember(ctx, roomId, memberId)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to get member", "error", err)
		return LeaveRoomResponse{}, fmt.Errorf("failed to get member: %w", err)
	}

	members, err := s.roomRepo.RemoveMember(ctx, &room.RemoveMemberParams{
		RoomId:   roomId,
		MemberId: memberId,
	})
	if err != nil {
		return LeaveRoomResponse{}, fmt.Errorf("failed to remove member: %w", err)
	}

	return LeaveRoomResponse{
		LeftMember:    memberFromRepo(member),
		Members:       membersFromRepo(members),
		Conns:         s.getConns(ctx, roomId, members, ""),
		IsRoomDeleted: len(members) == 0,
	}, nil
}

// GetMembers returns the current membership snapshot, or ErrRoomNotFound for
// a room with no live state.
func (s service) GetMembers(ctx context.Context, roomId string) ([]Member, error) {
	members, err := s.roomRepo.GetMembers(ctx, roomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get members: %w", err)
	}

	return membersFromRepo(members), nil
}

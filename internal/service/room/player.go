package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/syncroom/server/internal/repository/room"
)

type UpdatePlayerVideoParams struct {
	RoomId     string
	Url        string
	Position   float64
	SenderConn *websocket.Conn
}

type UpdatePlayerVideoResponse struct {
	Player Player
	// Conns are everyone except the sender; a url change is always broadcast.
	Conns []*websocket.Conn
}

// UpdatePlayerVideo replaces the room's playback state wholesale with the
// reported url and position. A fresh url starts in the playing state.
func (s service) UpdatePlayerVideo(ctx context.Context, params *UpdatePlayerVideoParams) (UpdatePlayerVideoResponse, error) {
	memberId, err := s.requireBound(params.SenderConn, params.RoomId)
	if err != nil {
		return UpdatePlayerVideoResponse{}, err
	}

	player, err := s.roomRepo.SetPlayer(ctx, &room.SetPlayerParams{
		RoomId:    params.RoomId,
		Url:       params.Url,
		Position:  params.Position,
		IsPlaying: true,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return UpdatePlayerVideoResponse{}, fmt.Errorf("failed to set player: %w", err)
	}

	members, err := s.roomRepo.GetMembers(ctx, params.RoomId)
	if err != nil {
		return UpdatePlayerVideoResponse{}, fmt.Errorf("failed to get members: %w", err)
	}

	return UpdatePlayerVideoResponse{
		Player: playerFromRepo(player),
		Conns:  s.getConns(ctx, params.RoomId, members, memberId),
	}, nil
}

type UpdatePlayerStateParams struct {
	RoomId     string
	IsPlaying  bool
	Position   float64
	SenderConn *websocket.Conn
}

type UpdatePlayerStateResponse struct {
	Player Player
	Conns  []*websocket.Conn
}

// UpdatePlayerState records a participant's playback report. The most
// recently processed report is authoritative; there is no conflict resolution
// between simultaneous reporters. The raw position and flag are always
// forwarded, drift thresholds are the receiving client's concern.
func (s service) UpdatePlayerState(ctx context.Context, params *UpdatePlayerStateParams) (UpdatePlayerStateResponse, error) {
	memberId, err := s.requireBound(params.SenderConn, params.RoomId)
	if err != nil {
		return UpdatePlayerStateResponse{}, err
	}

	player, err := s.roomRepo.UpdatePlayerState(ctx, &room.UpdatePlayerStateParams{
		RoomId:    params.RoomId,
		Position:  params.Position,
		IsPlaying: params.IsPlaying,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return UpdatePlayerStateResponse{}, fmt.Errorf("failed to update player state: %w", err)
	}

	members, err := s.roomRepo.GetMembers(ctx, params.RoomId)
	if err != nil {
		return UpdatePlayerStateResponse{}, fmt.Errorf("failed to get members: %w", err)
	}

	return UpdatePlayerStateResponse{
		Player: playerFromRepo(player),
		Conns:  s.getConns(ctx, params.RoomId, members, memberId),
	}, nil
}

type GetPlayerStateParams struct {
	RoomId     string
	SenderConn *websocket.Conn
}

type GetPlayerStateResponse struct {
	// Player is nil when the room has no playback state yet.
	Player *Player
}

// GetPlayerState answers a late-joining or reconnecting participant that
// explicitly asks where the room's player is.
func (s service) GetPlayerState(ctx context.Context, params *GetPlayerStateParams) (GetPlayerStateResponse, error) {
	if _, err := s.requireBound(params.SenderConn, params.RoomId); err != nil {
		return GetPlayerStateResponse{}, err
	}

	player, err := s.roomRepo.GetPlayer(ctx, params.RoomId)
	if err != nil {
		if errors.Is(err, room.ErrPlayerNotFound) {
			return GetPlayerStateResponse{}, nil
		}
		return GetPlayerStateResponse{}, fmt.Errorf("failed to get player: %w", err)
	}

	p := playerFromRepo(player)

	return GetPlayerStateResponse{Player: &p}, nil
}

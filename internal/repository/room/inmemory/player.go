package inmemory

import (
	"context"

	"github.com/syncroom/server/internal/repository/room"
)

// SetPlayer replaces the room's playback state wholesale. Used on url change,
// so there is no merging with whatever state was there before.
func (r *repo) SetPlayer(_ context.Context, params *room.SetPlayerParams) (room.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs, ok := r.rooms[params.RoomId]
	if !ok {
		return room.Player{}, room.ErrRoomNotFound
	}

	player := room.Player{
		Url:       params.Url,
		Position:  params.Position,
		IsPlaying: params.IsPlaying,
		UpdatedAt: params.UpdatedAt,
	}
	rs.player = &player

	return player, nil
}

// UpdatePlayerState overwrites position and playing flag, creating a playback
// state with an empty url if the room has none yet. Last report wins.
func (r *repo) UpdatePlayerState(_ context.Context, params *room.UpdatePlayerStateParams) (room.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs, ok := r.rooms[params.RoomId]
	if !ok {
		return room.Player{}, room.ErrRoomNotFound
	}

	if rs.player == nil {
		rs.player = &room.Player{}
	}

	rs.player.Position = params.Position
	rs.player.IsPlaying = params.IsPlaying
	rs.player.UpdatedAt = params.UpdatedAt

	return *rs.player, nil
}

func (r *repo) GetPlayer(_ context.Context, roomId string) (room.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rs, ok := r.rooms[roomId]
	if !ok || rs.player == nil {
		return room.Player{}, room.ErrPlayerNotFound
	}

	return *rs.player, nil
}

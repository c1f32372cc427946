// Package inmemory holds live room state: the room table, each room's
// membership in insertion order and its playback state. Rooms are created on
// first join and removed the moment their membership becomes empty, so an
// entry exists if and only if the room has at least one member.
package inmemory

import (
	"sync"

	"github.com/syncroom/server/internal/repository/room"
)

type roomState struct {
	members map[string]room.Member
	// member ids in join order, kept in sync with members
	order  []string
	player *room.Player
}

func (rs *roomState) memberList() []room.Member {
	members := make([]room.Member, 0, len(rs.order))
	for _, memberId := range rs.order {
		members = append(members, rs.members[memberId])
	}

	return members
}

type repo struct {
	rooms map[string]*roomState
	mu    sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		rooms: make(map[string]*roomState),
	}
}

func (r *repo) getOrCreate(roomId string) *roomState {
	rs, ok := r.rooms[roomId]
	if !ok {
		rs = &roomState{members: make(map[string]room.Member)}
		r.rooms[roomId] = rs
	}

	return rs
}

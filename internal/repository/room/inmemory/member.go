package inmemory

import (
	"context"
	"slices"

	"github.com/syncroom/server/internal/repository/room"
)

// AddMember inserts the member into the room, creating the room if needed,
// and returns the membership snapshot taken after the insert. Re-adding an id
// already present replaces the stored record without changing its position.
func (r *repo) AddMember(_ context.Context, params *room.AddMemberParams) ([]room.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs := r.getOrCreate(params.RoomId)
	if _, ok := rs.members[params.Member.Id]; !ok {
		rs.order = append(rs.order, params.Member.Id)
	}
	rs.members[params.Member.Id] = params.Member

	return rs.memberList(), nil
}

// RemoveMember removes the member and returns the remaining membership
// snapshot. The room entry is dropped, playback state included, as soon as
// the last member leaves.
func (r *repo) RemoveMember(_ context.Context, params *room.RemoveMemberParams) ([]room.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs, ok := r.rooms[params.RoomId]
	if !ok {
		return nil, room.ErrRoomNotFound
	}

	if _, ok := rs.members[params.MemberId]; !ok {
		return nil, room.ErrMemberNotFound
	}

	delete(rs.members, params.MemberId)
	rs.order = slices.DeleteFunc(rs.order, func(memberId string) bool {
		return memberId == params.MemberId
	})

	if len(rs.members) == 0 {
		delete(r.rooms, params.RoomId)
		return []room.Member{}, nil
	}

	return rs.memberList(), nil
}

func (r *repo) GetMembers(_ context.Context, roomId string) ([]room.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rs, ok := r.rooms[roomId]
	if !ok {
		return nil, room.ErrRoomNotFound
	}

	return rs.memberList(), nil
}

func (r *repo) GetMember(_ context.Context, roomId, memberId string) (room.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rs, ok := r.rooms[roomId]
	if !ok {
		return room.Member{}, room.ErrRoomNotFound
	}

	member, ok := rs.members[memberId]
	if !ok {
		return room.Member{}, room.ErrMemberNotFound
	}

	return member, nil
}

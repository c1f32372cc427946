package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncroom/server/internal/repository/room"
)

func TestMembershipLifecycle(t *testing.T) {
	repo := NewRepo()
	ctx := context.Background()

	// never-created room yields no phantom state
	_, err := repo.GetMembers(ctx, "abc")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)

	members, err := repo.AddMember(ctx, &room.AddMemberParams{
		RoomId: "abc",
		Member: room.Member{Id: "a", DisplayName: "Alice"},
	})
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "a", members[0].Id, "snapshot must include the joiner")

	members, err = repo.AddMember(ctx, &room.AddMemberParams{
		RoomId: "abc",
		Member: room.Member{Id: "b", DisplayName: "Bob"},
	})
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "a", members[0].Id, "insertion order must be stable")
	assert.Equal(t, "b", members[1].Id)

	// re-adding an id replaces the record without duplicating membership
	members, err = repo.AddMember(ctx, &room.AddMemberParams{
		RoomId: "abc",
		Member: room.Member{Id: "a", DisplayName: "Alice II"},
	})
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "Alice II", members[0].DisplayName)
	assert.Equal(t, "a", members[0].Id, "replaced member keeps its position")

	members, err = repo.RemoveMember(ctx, &room.RemoveMemberParams{RoomId: "abc", MemberId: "b"})
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "a", members[0].Id)

	// removing an absent member is reported, not silently swallowed
	_, err = repo.RemoveMember(ctx, &room.RemoveMemberParams{RoomId: "abc", MemberId: "b"})
	assert.ErrorIs(t, err, room.ErrMemberNotFound)

	members, err = repo.RemoveMember(ctx, &room.RemoveMemberParams{RoomId: "abc", MemberId: "a"})
	require.NoError(t, err)
	assert.Empty(t, members)

	// last leave must delete the room entry entirely
	_, err = repo.GetMembers(ctx, "abc")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestGetMember(t *testing.T) {
	repo := NewRepo()
	ctx := context.Background()

	_, err := repo.GetMember(ctx, "abc", "a")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)

	_, err = repo.AddMember(ctx, &room.AddMemberParams{
		RoomId: "abc",
		Member: room.Member{Id: "a", DisplayName: "Alice"},
	})
	require.NoError(t, err)

	member, err := repo.GetMember(ctx, "abc", "a")
	require.NoError(t, err)
	assert.Equal(t, "Alice", member.DisplayName)

	_, err = repo.GetMember(ctx, "abc", "b")
	assert.ErrorIs(t, err, room.ErrMemberNotFound)
}

func TestPlayerLastWriteWins(t *testing.T) {
	repo := NewRepo()
	ctx := context.Background()

	_, err := repo.AddMember(ctx, &room.AddMemberParams{
		RoomId: "abc",
		Member: room.Member{Id: "a"},
	})
	require.NoError(t, err)

	_, err = repo.GetPlayer(ctx, "abc")
	assert.ErrorIs(t, err, room.ErrPlayerNotFound)

	player, err := repo.SetPlayer(ctx, &room.SetPlayerParams{
		RoomId:    "abc",
		Url:       "http://x",
		Position:  0,
		IsPlaying: true,
		UpdatedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, "http://x", player.Url)
	assert.True(t, player.IsPlaying)

	// two reports in quick succession: only the second survives
	_, err = repo.UpdatePlayerState(ctx, &room.UpdatePlayerStateParams{
		RoomId: "abc", Position: 10, IsPlaying: true, UpdatedAt: time.Now(),
	})
	require.NoError(t, err)
	_, err = repo.UpdatePlayerState(ctx, &room.UpdatePlayerStateParams{
		RoomId: "abc", Position: 42.5, IsPlaying: false, UpdatedAt: time.Now(),
	})
	require.NoError(t, err)

	player, err = repo.GetPlayer(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 42.5, player.Position)
	assert.False(t, player.IsPlaying)
	assert.Equal(t, "http://x", player.Url, "state report must not touch the url")
}

func TestPlayerStateCreatesWithEmptyUrl(t *testing.T) {
	repo := NewRepo()
	ctx := context.Background()

	_, err := repo.AddMember(ctx, &room.AddMemberParams{
		RoomId: "abc",
		Member: room.Member{Id: "a"},
	})
	require.NoError(t, err)

	player, err := repo.UpdatePlayerState(ctx, &room.UpdatePlayerStateParams{
		RoomId: "abc", Position: 5, IsPlaying: true, UpdatedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.Empty(t, player.Url)
	assert.Equal(t, 5.0, player.Position)
}

func TestPlayerDiesWithRoom(t *testing.T) {
	repo := NewRepo()
	ctx := context.Background()

	_, err := repo.AddMember(ctx, &room.AddMemberParams{
		RoomId: "abc",
		Member: room.Member{Id: "a"},
	})
	require.NoError(t, err)

	_, err = repo.SetPlayer(ctx, &room.SetPlayerParams{
		RoomId: "abc", Url: "http://x", IsPlaying: true, UpdatedAt: time.Now(),
	})
	require.NoError(t, err)

	_, err = repo.RemoveMember(ctx, &room.RemoveMemberParams{RoomId: "abc", MemberId: "a"})
	require.NoError(t, err)

	// recreating the room must not resurrect the old playback state
	_, err = repo.AddMember(ctx, &room.AddMemberParams{
		RoomId: "abc",
		Member: room.Member{Id: "b"},
	})
	require.NoError(t, err)

	_, err = repo.GetPlayer(ctx, "abc")
	assert.ErrorIs(t, err, room.ErrPlayerNotFound)
}

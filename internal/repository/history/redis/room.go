package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/syncroom/server/internal/repository/history"
)

func (r repo) TouchRoom(ctx context.Context, params *history.TouchRoomParams) error {
	roomKey := r.getRoomKey(params.RoomId)

	pipe := r.rc.TxPipeline()
	pipe.HSetNX(ctx, roomKey, "room_id", params.RoomId)
	pipe.HSetNX(ctx, roomKey, "created_at", params.At.Unix())
	pipe.HSet(ctx, roomKey, "last_active_at", params.At.Unix())
	pipe.Expire(ctx, roomKey, r.expireDuration)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to touch room: %w", err)
	}

	return nil
}

func (r repo) GetRoom(ctx context.Context, roomId string) (history.Room, error) {
	roomKey := r.getRoomKey(roomId)
	fields, err := r.rc.HGetAll(ctx, roomKey).Result()
	if err != nil {
		return history.Room{}, fmt.Errorf("failed to get room record: %w", err)
	}

	if len(fields) == 0 {
		return history.Room{}, history.ErrRoomNotFound
	}

	r.rc.Expire(ctx, roomKey, r.expireDuration)

	return history.Room{
		RoomId:       fields["room_id"],
		CreatedAt:    r.fieldToTime(fields["created_at"]),
		LastActiveAt: r.fieldToTime(fields["last_active_at"]),
	}, nil
}

func (r repo) fieldToTime(field string) time.Time {
	unix, _ := strconv.ParseInt(field, 10, 64)
	return time.Unix(unix, 0).UTC()
}

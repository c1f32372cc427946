package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/syncroom/server/internal/repository/history"
)

func (r repo) AddMessage(ctx context.Context, params *history.AddMessageParams) error {
	raw, err := json.Marshal(params.Message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	messagesKey := r.getMessagesKey(params.RoomId)
	roomKey := r.getRoomKey(params.RoomId)

	pipe := r.rc.TxPipeline()
	pipe.RPush(ctx, messagesKey, raw)
	pipe.Expire(ctx, messagesKey, r.expireDuration)
	pipe.HSetNX(ctx, roomKey, "room_id", params.RoomId)
	pipe.HSetNX(ctx, roomKey, "created_at", params.Message.SentAt.Unix())
	pipe.HSet(ctx, roomKey, "last_active_at", params.Message.SentAt.Unix())
	pipe.Expire(ctx, roomKey, r.expireDuration)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add message: %w", err)
	}

	return nil
}

func (r repo) GetMessages(ctx context.Context, roomId string) ([]history.Message, error) {
	messagesKey := r.getMessagesKey(roomId)
	raws, err := r.rc.LRange(ctx, messagesKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	r.rc.Expire(ctx, messagesKey, r.expireDuration)

	messages := make([]history.Message, 0, len(raws))
	for _, raw := range raws {
		var message history.Message
		if err := json.Unmarshal([]byte(raw), &message); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}

		messages = append(messages, message)
	}

	return messages, nil
}

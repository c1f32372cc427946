package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/syncroom/server/internal/service/room"
	"github.com/syncroom/server/pkg/wsrouter"
)

var errMalformedPayload = errors.New("malformed payload")

func withInput[T any](handler func(context.Context, *websocket.Conn, T) error) wsrouter.HandlerFunc {
	return func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		var input T
		if err := json.Unmarshal(payload, &input); err != nil {
			return fmt.Errorf("%w: %s", errMalformedPayload, err)
		}

		return handler(ctx, conn, input)
	}
}

func (c *controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	// A dropped event must never take the connection or the process with it:
	// precondition violations and malformed payloads degrade to logged no-ops.
	mux.OnError(func(ctx context.Context, messageType string, err error) {
		if errors.Is(err, room.ErrNotInRoom) || errors.Is(err, errMalformedPayload) {
			c.logger.DebugContext(ctx, "event dropped", "type", messageType, "error", err)
			return
		}
		c.logger.InfoContext(ctx, "event failed", "type", messageType, "error", err)
	})

	// presence
	mux.Handle("join-room", withInput(c.handleJoinRoom))
	mux.Handle("leave-room", withInput(c.handleLeaveRoom))

	// playback
	mux.Handle("sync-url", withInput(c.handleSyncUrl))
	mux.Handle("video-state-change", withInput(c.handleVideoStateChange))
	mux.Handle("request-video-state", withInput(c.handleRequestVideoState))

	// chat
	mux.Handle("chat-message", withInput(c.handleChatMessage))

	return mux
}

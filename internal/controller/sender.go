package controller

import (
	"context"

	"github.com/gorilla/websocket"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func (c *controller) writeToConn(ctx context.Context, conn *websocket.Conn, out *Output) error {
	if err := conn.WriteJSON(out); err != nil {
		c.logger.DebugContext(ctx, "failed to write to conn", "type", out.Type, "error", err)
		return err
	}

	return nil
}

// broadcast delivers the event to every given connection. Fire-and-forget:
// a failed write only affects that connection, which will clean itself up
// when its own read loop fails.
func (c *controller) broadcast(ctx context.Context, conns []*websocket.Conn, out *Output) {
	for _, conn := range conns {
		c.writeToConn(ctx, conn, out)
	}
}

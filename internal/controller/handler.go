package controller

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/syncroom/server/internal/service/room"
)

// ws upgrades the request to a websocket session and serves its events until
// the transport drops. Disconnect cleanup always runs, however the read loop
// ends, since an abrupt close is the primary source of state leaks.
func (c *controller) ws(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}

	if err := c.roomService.RegisterConn(r.Context(), conn); err != nil {
		c.logger.WarnContext(r.Context(), "failed to register conn", "error", err)
		conn.Close()
		return
	}
	defer c.disconnect(r.Context(), conn)

	if err := c.wsmux.ServeConn(r.Context(), conn); err != nil {
		c.logger.DebugContext(r.Context(), "conn closed", "error", err)
	}
}

func (c *controller) disconnect(ctx context.Context, conn *websocket.Conn) {
	if roomId, ok := c.roomService.GetBoundRoom(conn); ok {
		unlock := c.locks.Lock(roomId)
		defer unlock()
	}

	resp, err := c.roomService.Disconnect(ctx, &room.DisconnectParams{Conn: conn})
	if err != nil {
		c.logger.InfoContext(ctx, "failed to disconnect conn", "error", err)
		return
	}

	if !resp.WasInRoom || resp.IsRoomDeleted {
		return
	}

	c.broadcast(ctx, resp.Conns, &Output{
		Type:    "member-left",
		Payload: resp.LeftMember,
	})
	c.broadcast(ctx, resp.Conns, &Output{
		Type: "room-state",
		Payload: map[string]any{
			"members": resp.Members,
		},
	})
}

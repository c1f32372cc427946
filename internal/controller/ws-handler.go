package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/syncroom/server/internal/service/room"
)

type JoinRoomInput struct {
	RoomId string      `json:"roomId"`
	User   room.Member `json:"user"`
}

func (c *controller) handleJoinRoom(ctx context.Context, conn *websocket.Conn, input JoinRoomInput) error {
	if input.RoomId == "" || input.User.Id == "" {
		return fmt.Errorf("%w: roomId and user.id are required", errMalformedPayload)
	}

	// Rebinding implies leaving the previous room first, so no ghost
	// membership survives a room switch.
	if prevRoomId, ok := c.roomService.GetBoundRoom(conn); ok && prevRoomId != input.RoomId {
		if err := c.leaveRoom(ctx, conn, prevRoomId); err != nil && !errors.Is(err, room.ErrNotInRoom) {
			return fmt.Errorf("failed to leave previous room: %w", err)
		}
	}

	unlock := c.locks.Lock(input.RoomId)
	defer unlock()

	joinRoomResp, err := c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		RoomId:     input.RoomId,
		Member:     input.User,
		SenderConn: conn,
	})
	if err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	// Snapshot goes to the joiner alone and is taken after the insert, so
	// the joiner always sees itself.
	if err := c.writeToConn(ctx, conn, &Output{
		Type: "room-state",
		Payload: map[string]any{
			"members": joinRoomResp.Members,
		},
	}); err != nil {
		return fmt.Errorf("failed to write room state: %w", err)
	}

	// A same-room rejoin under a new id retires the old membership; the rest
	// of the room hears the old identity leave before the new one joins.
	if joinRoomResp.ReplacedMember != nil {
		c.broadcast(ctx, joinRoomResp.Conns, &Output{
			Type:    "member-left",
			Payload: joinRoomResp.ReplacedMember,
		})
	}

	c.broadcast(ctx, joinRoomResp.Conns, &Output{
		Type:    "member-joined",
		Payload: joinRoomResp.JoinedMember,
	})

	return nil
}

type LeaveRoomInput struct {
	RoomId string      `json:"roomId"`
	User   room.Member `json:"user"`
}

func (c *controller) handleLeaveRoom(ctx context.Context, conn *websocket.Conn, input LeaveRoomInput) error {
	return c.leaveRoom(ctx, conn, input.RoomId)
}

func (c *controller) leaveRoom(ctx context.Context, conn *websocket.Conn, roomId string) error {
	unlock := c.locks.Lock(roomId)
	defer unlock()

	leaveRoomResp, err := c.roomService.LeaveRoom(ctx, &room.LeaveRoomParams{
		RoomId:     roomId,
		SenderConn: conn,
	})
	if err != nil {
		return err
	}

	if leaveRoomResp.IsRoomDeleted {
		return nil
	}

	c.broadcast(ctx, leaveRoomResp.Conns, &Output{
		Type:    "member-left",
		Payload: leaveRoomResp.LeftMember,
	})
	// Survivors get the full snapshot as ground truth, not just the delta.
	c.broadcast(ctx, leaveRoomResp.Conns, &Output{
		Type: "room-state",
		Payload: map[string]any{
			"members": leaveRoomResp.Members,
		},
	})

	return nil
}

type SyncUrlInput struct {
	RoomId    string  `json:"roomId"`
	Url       string  `json:"url"`
	Timestamp float64 `json:"timestamp"`
}

func (c *controller) handleSyncUrl(ctx context.Context, conn *websocket.Conn, input SyncUrlInput) error {
	unlock := c.locks.Lock(input.RoomId)
	defer unlock()

	updatePlayerVideoResp, err := c.roomService.UpdatePlayerVideo(ctx, &room.UpdatePlayerVideoParams{
		RoomId:     input.RoomId,
		Url:        input.Url,
		Position:   input.Timestamp,
		SenderConn: conn,
	})
	if err != nil {
		return err
	}

	c.broadcast(ctx, updatePlayerVideoResp.Conns, &Output{
		Type: "url-changed",
		Payload: map[string]any{
			"url":       updatePlayerVideoResp.Player.Url,
			"timestamp": updatePlayerVideoResp.Player.Position,
		},
	})

	return nil
}

type VideoStateChangeInput struct {
	RoomId    string  `json:"roomId"`
	IsPlaying bool    `json:"isPlaying"`
	Timestamp float64 `json:"timestamp"`
}

func (c *controller) handleVideoStateChange(ctx context.Context, conn *websocket.Conn, input VideoStateChangeInput) error {
	unlock := c.locks.Lock(input.RoomId)
	defer unlock()

	updatePlayerStateResp, err := c.roomService.UpdatePlayerState(ctx, &room.UpdatePlayerStateParams{
		RoomId:     input.RoomId,
		IsPlaying:  input.IsPlaying,
		Position:   input.Timestamp,
		SenderConn: conn,
	})
	if err != nil {
		return err
	}

	// Raw position and flag, never a pre-filtered "should you seek": drift
	// thresholds are evaluated by the receiving client.
	c.broadcast(ctx, updatePlayerStateResp.Conns, &Output{
		Type: "video-state-updated",
		Payload: map[string]any{
			"isPlaying": updatePlayerStateResp.Player.IsPlaying,
			"timestamp": updatePlayerStateResp.Player.Position,
		},
	})

	return nil
}

type RequestVideoStateInput struct {
	RoomId string `json:"roomId"`
}

func (c *controller) handleRequestVideoState(ctx context.Context, conn *websocket.Conn, input RequestVideoStateInput) error {
	unlock := c.locks.Lock(input.RoomId)
	defer unlock()

	getPlayerStateResp, err := c.roomService.GetPlayerState(ctx, &room.GetPlayerStateParams{
		RoomId:     input.RoomId,
		SenderConn: conn,
	})
	if err != nil {
		return err
	}

	if getPlayerStateResp.Player == nil {
		return nil
	}

	return c.writeToConn(ctx, conn, &Output{
		Type: "video-state-updated",
		Payload: map[string]any{
			"isPlaying": getPlayerStateResp.Player.IsPlaying,
			"timestamp": getPlayerStateResp.Player.Position,
		},
	})
}

type ChatMessageInput struct {
	RoomId  string      `json:"roomId"`
	Message string      `json:"message"`
	User    room.Member `json:"user"`
}

func (c *controller) handleChatMessage(ctx context.Context, conn *websocket.Conn, input ChatMessageInput) error {
	unlock := c.locks.Lock(input.RoomId)
	defer unlock()

	sendMessageResp, err := c.roomService.SendMessage(ctx, &room.SendMessageParams{
		RoomId:     input.RoomId,
		Text:       input.Message,
		SenderConn: conn,
	})
	if err != nil {
		return err
	}

	// Sender included: its own message renders through the same path as
	// everyone else's.
	c.broadcast(ctx, sendMessageResp.Conns, &Output{
		Type:    "new-message",
		Payload: sendMessageResp.Message,
	})

	return nil
}

package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/syncroom/server/internal/repository/history"
	"github.com/syncroom/server/internal/service/room"
	"github.com/syncroom/server/pkg/keylock"
	"github.com/syncroom/server/pkg/validator"
	"github.com/syncroom/server/pkg/wsrouter"
)

type iRoomService interface {
	RegisterConn(context.Context, *websocket.Conn) error
	GetBoundRoom(*websocket.Conn) (string, bool)
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	LeaveRoom(context.Context, *room.LeaveRoomParams) (room.LeaveRoomResponse, error)
	Disconnect(context.Context, *room.DisconnectParams) (room.DisconnectResponse, error)
	UpdatePlayerVideo(context.Context, *room.UpdatePlayerVideoParams) (room.UpdatePlayerVideoResponse, error)
	UpdatePlayerState(context.Context, *room.UpdatePlayerStateParams) (room.UpdatePlayerStateResponse, error)
	GetPlayerState(context.Context, *room.GetPlayerStateParams) (room.GetPlayerStateResponse, error)
	SendMessage(context.Context, *room.SendMessageParams) (room.SendMessageResponse, error)
	GetMembers(context.Context, string) ([]room.Member, error)
}

type iHistoryRepo interface {
	AddMessage(context.Context, *history.AddMessageParams) error
	GetMessages(context.Context, string) ([]history.Message, error)
	TouchRoom(context.Context, *history.TouchRoomParams) error
	GetRoom(context.Context, string) (history.Room, error)
}

type controller struct {
	roomService iRoomService
	historyRepo iHistoryRepo
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	// locks is the per-room exclusivity boundary: one holder mutates a room
	// and delivers its notifications at a time, rooms never block each other.
	locks  *keylock.KeyLock
	wsmux  *wsrouter.WSRouter
	logger *slog.Logger
}

func NewController(roomService iRoomService, historyRepo iHistoryRepo, logger *slog.Logger) *controller {
	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService: roomService,
		historyRepo: historyRepo,
		validate:    validator.NewValidator(),
		locks:       keylock.New(),
		logger:      logger,
	}
	c.wsmux = c.getWSRouter()

	return c
}

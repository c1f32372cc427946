package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/syncroom/server/internal/repository/history"
	"github.com/syncroom/server/internal/service/room"
)

// The REST surface is the thin CRUD glue around the live relay: it reads and
// writes the durable room/message records and never reaches into the hot
// path.

func (c *controller) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (c *controller) writeError(w http.ResponseWriter, status int, message string) {
	c.writeJSON(w, status, map[string]string{"error": message})
}

type PostMessageInput struct {
	UserId      string `json:"userId" validate:"required"`
	DisplayName string `json:"displayName" validate:"required"`
	Text        string `json:"text" validate:"required,max=2000"`
}

func (c *controller) postMessage(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	var input PostMessageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		c.logger.DebugContext(r.Context(), "failed to decode body", "error", err)
		c.writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": validationErrors})
		return
	}

	message := history.Message{
		Id:          uuid.NewString(),
		UserId:      input.UserId,
		DisplayName: input.DisplayName,
		Text:        input.Text,
		SentAt:      time.Now().UTC(),
	}
	if err := c.historyRepo.AddMessage(r.Context(), &history.AddMessageParams{
		RoomId:  roomId,
		Message: message,
	}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to add message", "error", err)
		c.writeError(w, http.StatusInternalServerError, "failed to store message")
		return
	}

	c.writeJSON(w, http.StatusCreated, map[string]any{"message": message})
}

func (c *controller) getMessages(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	messages, err := c.historyRepo.GetMessages(r.Context(), roomId)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to get messages", "error", err)
		c.writeError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// touchRoom creates or refreshes the durable room record. The page layer
// calls it when a room page is opened, before any websocket joins.
func (c *controller) touchRoom(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	if err := c.historyRepo.TouchRoom(r.Context(), &history.TouchRoomParams{
		RoomId: roomId,
		At:     time.Now().UTC(),
	}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to touch room", "error", err)
		c.writeError(w, http.StatusInternalServerError, "failed to store room record")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *controller) getRoom(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	liveMemberCount := 0
	members, err := c.roomService.GetMembers(r.Context(), roomId)
	if err != nil && !errors.Is(err, room.ErrRoomNotFound) {
		c.logger.WarnContext(r.Context(), "failed to get members", "error", err)
		c.writeError(w, http.StatusInternalServerError, "failed to load room")
		return
	}
	liveMemberCount = len(members)

	record, err := c.historyRepo.GetRoom(r.Context(), roomId)
	if err != nil {
		if !errors.Is(err, history.ErrRoomNotFound) {
			c.logger.WarnContext(r.Context(), "failed to get room record", "error", err)
			c.writeError(w, http.StatusInternalServerError, "failed to load room")
			return
		}

		if liveMemberCount == 0 {
			c.writeError(w, http.StatusNotFound, "room not found")
			return
		}

		c.writeJSON(w, http.StatusOK, map[string]any{
			"roomId":          roomId,
			"liveMemberCount": liveMemberCount,
		})
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]any{
		"roomId":          roomId,
		"liveMemberCount": liveMemberCount,
		"record":          record,
	})
}

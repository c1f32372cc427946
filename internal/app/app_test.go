package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncroom/server/internal/controller"
	connInmemory "github.com/syncroom/server/internal/repository/connection/inmemory"
	historyRedis "github.com/syncroom/server/internal/repository/history/redis"
	roomInmemory "github.com/syncroom/server/internal/repository/room/inmemory"
	"github.com/syncroom/server/internal/service/room"
)

type output struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})

	historyRepo := historyRedis.NewRepo(rc, time.Hour)
	roomService := room.NewService(roomInmemory.NewRepo(), connInmemory.NewRepo(), logger)
	controller := controller.NewController(roomService, historyRepo, logger)

	server := httptest.NewServer(controller.GetMux())
	t.Cleanup(server.Close)

	return server
}

func dialWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, eventType string, payload any) {
	t.Helper()

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    eventType,
		"payload": payload,
	}))
}

func readEvent(t *testing.T, conn *websocket.Conn) output {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var out output
	require.NoError(t, conn.ReadJSON(&out))

	return out
}

func memberIds(t *testing.T, payload json.RawMessage) []string {
	t.Helper()

	var snapshot struct {
		Members []struct {
			Id string `json:"id"`
		} `json:"members"`
	}
	require.NoError(t, json.Unmarshal(payload, &snapshot))

	ids := make([]string, 0, len(snapshot.Members))
	for _, m := range snapshot.Members {
		ids = append(ids, m.Id)
	}

	return ids
}

func TestRoomSessionOverWebsocket(t *testing.T) {
	server := newTestServer(t)

	connA := dialWS(t, server)
	send(t, connA, "join-room", map[string]any{
		"roomId": "abc",
		"user":   map[string]any{"id": "a", "displayName": "Alice"},
	})
	stateA := readEvent(t, connA)
	assert.Equal(t, "room-state", stateA.Type)
	assert.Equal(t, []string{"a"}, memberIds(t, stateA.Payload))

	connB := dialWS(t, server)
	send(t, connB, "join-room", map[string]any{
		"roomId": "abc",
		"user":   map[string]any{"id": "b", "displayName": "Bob"},
	})
	stateB := readEvent(t, connB)
	assert.Equal(t, "room-state", stateB.Type)
	assert.Equal(t, []string{"a", "b"}, memberIds(t, stateB.Payload))

	joined := readEvent(t, connA)
	assert.Equal(t, "member-joined", joined.Type)
	var joinedMember struct {
		Id string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(joined.Payload, &joinedMember))
	assert.Equal(t, "b", joinedMember.Id)

	// A shares a url; only B hears about it
	send(t, connA, "sync-url", map[string]any{
		"roomId":    "abc",
		"url":       "http://x",
		"timestamp": 0,
	})
	urlChanged := readEvent(t, connB)
	assert.Equal(t, "url-changed", urlChanged.Type)
	var urlPayload struct {
		Url       string  `json:"url"`
		Timestamp float64 `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(urlChanged.Payload, &urlPayload))
	assert.Equal(t, "http://x", urlPayload.Url)
	assert.Equal(t, 0.0, urlPayload.Timestamp)

	// chat is echoed to the sender; since events per connection arrive in
	// order, A seeing the echo first proves A never got its own url-changed
	send(t, connA, "chat-message", map[string]any{
		"roomId":  "abc",
		"message": "hello",
	})
	for _, conn := range []*websocket.Conn{connA, connB} {
		newMessage := readEvent(t, conn)
		assert.Equal(t, "new-message", newMessage.Type)
		var messagePayload struct {
			User struct {
				Id string `json:"id"`
			} `json:"user"`
			Text      string    `json:"text"`
			Timestamp time.Time `json:"timestamp"`
		}
		require.NoError(t, json.Unmarshal(newMessage.Payload, &messagePayload))
		assert.Equal(t, "a", messagePayload.User.Id, "sender identity comes from the stored membership")
		assert.Equal(t, "hello", messagePayload.Text)
		assert.False(t, messagePayload.Timestamp.IsZero())
	}

	// B pauses; raw position and flag are forwarded to A untouched
	send(t, connB, "video-state-change", map[string]any{
		"roomId":    "abc",
		"isPlaying": false,
		"timestamp": 42.5,
	})
	stateUpdated := readEvent(t, connA)
	assert.Equal(t, "video-state-updated", stateUpdated.Type)
	var statePayload struct {
		IsPlaying bool    `json:"isPlaying"`
		Timestamp float64 `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(stateUpdated.Payload, &statePayload))
	assert.False(t, statePayload.IsPlaying)
	assert.Equal(t, 42.5, statePayload.Timestamp)

	// B asks for current state and gets a direct answer
	send(t, connB, "request-video-state", map[string]any{"roomId": "abc"})
	direct := readEvent(t, connB)
	assert.Equal(t, "video-state-updated", direct.Type)

	// unknown and malformed events are ignored and the session stays up;
	// a chat sent right after them must be the next thing either side reads
	send(t, connA, "no-such-event", map[string]any{"x": 1})
	send(t, connA, "sync-url", "not-an-object")
	send(t, connA, "chat-message", map[string]any{
		"roomId":  "abc",
		"message": "still here",
	})
	for _, conn := range []*websocket.Conn{connA, connB} {
		newMessage := readEvent(t, conn)
		assert.Equal(t, "new-message", newMessage.Type)
	}

	// B drops; A is told and gets the fresh snapshot
	connB.Close()
	left := readEvent(t, connA)
	assert.Equal(t, "member-left", left.Type)
	var leftMember struct {
		Id string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(left.Payload, &leftMember))
	assert.Equal(t, "b", leftMember.Id)

	resync := readEvent(t, connA)
	assert.Equal(t, "room-state", resync.Type)
	assert.Equal(t, []string{"a"}, memberIds(t, resync.Payload))

	// room is still alive with A in it
	assert.Equal(t, 1, liveMemberCount(t, server, "abc"))

	// last leave deletes the room
	connA.Close()
	require.Eventually(t, func() bool {
		return liveMemberCount(t, server, "abc") == 0
	}, 2*time.Second, 50*time.Millisecond)
}

func TestMessageHistoryAPI(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/api/rooms/abc/messages", "application/json",
		bytes.NewBufferString(`{"userId":"a","displayName":"Alice","text":"hello"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// validation rejects an empty text
	resp, err = http.Post(server.URL+"/api/rooms/abc/messages", "application/json",
		bytes.NewBufferString(`{"userId":"a","displayName":"Alice","text":""}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, err = http.Get(server.URL + "/api/rooms/abc/messages")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listBody struct {
		Messages []struct {
			UserId string `json:"userId"`
			Text   string `json:"text"`
		} `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listBody))
	require.Len(t, listBody.Messages, 1)
	assert.Equal(t, "a", listBody.Messages[0].UserId)
	assert.Equal(t, "hello", listBody.Messages[0].Text)

	// the room record was touched by the message write
	resp, err = http.Get(server.URL + "/api/rooms/abc")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// an untouched room is not found
	resp, err = http.Get(server.URL + "/api/rooms/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTouchRoomAPI(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/api/rooms/abc", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Get(server.URL + "/api/rooms/abc")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var roomBody struct {
		RoomId          string `json:"roomId"`
		LiveMemberCount int    `json:"liveMemberCount"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&roomBody))
	assert.Equal(t, "abc", roomBody.RoomId)
	assert.Equal(t, 0, roomBody.LiveMemberCount)
}

func liveMemberCount(t *testing.T, server *httptest.Server, roomId string) int {
	t.Helper()

	resp, err := http.Get(server.URL + "/api/rooms/" + roomId)
	require.NoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0
	}

	var body struct {
		LiveMemberCount int `json:"liveMemberCount"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	return body.LiveMemberCount
}

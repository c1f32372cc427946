// Package history defines the durable room and chat-message records kept in
// the external store. It is written to by the request layer only; the live
// relay path never touches it.
package history

import "time"

type Message struct {
	Id          string    `json:"id" redis:"id"`
	UserId      string    `json:"userId" redis:"user_id"`
	DisplayName string    `json:"displayName" redis:"display_name"`
	Text        string    `json:"text" redis:"text"`
	SentAt      time.Time `json:"sentAt" redis:"sent_at"`
}

type Room struct {
	RoomId       string    `json:"roomId" redis:"room_id"`
	CreatedAt    time.Time `json:"createdAt" redis:"created_at"`
	LastActiveAt time.Time `json:"lastActiveAt" redis:"last_active_at"`
}

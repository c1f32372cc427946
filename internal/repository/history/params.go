package history

import "time"

type AddMessageParams struct {
	RoomId  string
	Message Message
}

type TouchRoomParams struct {
	RoomId string
	At     time.Time
}

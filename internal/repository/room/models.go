package room

import "time"

type Member struct {
	Id          string
	DisplayName string
	AvatarRef   *string
}

// Player is the authoritative last-known playback state of a room. It is the
// server's estimate only; no clock advances it between reports.
type Player struct {
	Url       string
	Position  float64
	IsPlaying bool
	UpdatedAt time.Time
}

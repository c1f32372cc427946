package room

import "time"

type Member struct {
	Id          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	AvatarRef   *string `json:"avatarRef,omitempty"`
}

type Player struct {
	Url       string    `json:"url"`
	Position  float64   `json:"timestamp"`
	IsPlaying bool      `json:"isPlaying"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Message struct {
	Id        string    `json:"id"`
	User      Member    `json:"user"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

package room

import "time"

type AddMemberParams struct {
	RoomId string
	Member Member
}

type RemoveMemberParams struct {
	RoomId   string
	MemberId string
}

type SetPlayerParams struct {
	RoomId    string
	Url       string
	Position  float64
	IsPlaying bool
	UpdatedAt time.Time
}

type UpdatePlayerStateParams struct {
	RoomId    string
	Position  float64
	IsPlaying bool
	UpdatedAt time.Time
}

package model

import (
	"time"
)

type WebInvite struct {
	ID           string    `json:"id"`
	From         string    `json:"from"`
	Group        string    `json:"group"`
	Room         string    `json:"room,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Status       string    `json:"status"`
	RemainingSec int       `json:"remaining_sec,omitempty"`
}

type WebWorkOrder struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	Task      string    `json:"task"`
	Priority  string    `json:"priority"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

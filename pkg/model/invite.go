package model

import (
	"time"
)

type InviteStatus string

const (
	StatusPending  InviteStatus = "pending"
	StatusAccepted InviteStatus = "accepted"
	StatusDeclined InviteStatus = "declined"
	StatusExpired  InviteStatus = "expired"
)

// Terminal reports whether the status permits no further transitions.
func (s InviteStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusDeclined || s == StatusExpired
}

func (s InviteStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined, StatusExpired:
		return true
	}

	return false
}

// Decision is the subset of statuses a user response may carry.
func (s InviteStatus) Decision() bool {
	return s == StatusAccepted || s == StatusDeclined
}

type Invite struct {
	ID        string `gorm:"primaryKey"`
	From      string `gorm:"index"`
	Group     string `gorm:"index"`
	Room      string
	CreatedAt time.Time
	UpdatedAt time.Time
	Status    InviteStatus `gorm:"index"`
}

func (i *Invite) Key() string {
	return i.ID
}

// Deadline is the moment the response window closes.
func (i *Invite) Deadline(window time.Duration) time.Time {
	return i.CreatedAt.Add(window)
}

func (i *Invite) ToWeb(remaining time.Duration) *WebInvite {
	w := &WebInvite{
		ID:        i.ID,
		From:      i.From,
		Group:     i.Group,
		Room:      i.Room,
		CreatedAt: i.CreatedAt,
		Status:    string(i.Status),
	}

	if i.Status == StatusPending {
		w.RemainingSec = int(remaining.Seconds())
	}

	return w
}

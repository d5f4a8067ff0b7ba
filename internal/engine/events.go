package engine

import (
	"github.com/dormhub/dormdash/pkg/model"
)

type EventType string

const (
	EventTick     EventType = "tick"
	EventAccepted EventType = "accepted"
	EventDeclined EventType = "declined"
	EventExpired  EventType = "expired"
)

// Event is a snapshot, safe to hand to subscribers on other goroutines.
type Event struct {
	Type   EventType
	Invite *model.WebInvite
}

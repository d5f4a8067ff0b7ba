package model

import (
	"time"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderInProgress OrderStatus = "in-progress"
	OrderCompleted  OrderStatus = "completed"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderInProgress, OrderCompleted:
		return true
	}

	return false
}

// Open reports whether the order still needs technician work.
func (s OrderStatus) Open() bool {
	return s == OrderPending || s == OrderInProgress
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}

	return false
}

type WorkOrder struct {
	ID        string `gorm:"primaryKey"`
	RoomID    string `gorm:"index"`
	Task      string
	Priority  Priority
	Status    OrderStatus `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (o *WorkOrder) Key() string {
	return o.ID
}

func (o *WorkOrder) ToWeb() *WebWorkOrder {
	return &WebWorkOrder{
		ID:        o.ID,
		RoomID:    o.RoomID,
		Task:      o.Task,
		Priority:  string(o.Priority),
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

package database

import (
	"gorm.io/gorm"

	"github.com/dormhub/dormdash/pkg/model"
)

type WorkOrderQuery struct {
	Query[model.WorkOrder]
	id     string
	room   string
	status model.OrderStatus
	open   bool
}

func NewWorkOrderQuery(db *gorm.DB) *WorkOrderQuery {
	q := new(WorkOrderQuery)
	q.setDefaults(db, "created_at DESC")

	return q
}

func (q *WorkOrderQuery) Order(s string) *WorkOrderQuery {
	q.order = s
	return q
}

func (q *WorkOrderQuery) Limit(n int) *WorkOrderQuery {
	q.limit = n
	return q
}

func (q *WorkOrderQuery) Id(id string) *WorkOrderQuery {
	q.id = id
	return q
}

func (q *WorkOrderQuery) Room(room string) *WorkOrderQuery {
	q.room = room
	return q
}

func (q *WorkOrderQuery) Status(s model.OrderStatus) *WorkOrderQuery {
	q.status = s
	return q
}

// Open keeps only orders that still need work.
func (q *WorkOrderQuery) Open() *WorkOrderQuery {
	q.open = true
	return q
}

func (q *WorkOrderQuery) where() *gorm.DB {
	tx := q.db

	if q.id != "" {
		tx = tx.Where("id = ?", q.id)
	}

	if q.room != "" {
		tx = tx.Where("room_id = ?", q.room)
	}

	if q.status != "" {
		tx = tx.Where("status = ?", q.status)
	}

	if q.open {
		tx = tx.Where("status <> ?", model.OrderCompleted)
	}

	return tx
}

func (q *WorkOrderQuery) Get() []*model.WorkOrder {
	return q.get(q.where().Model(&model.WorkOrder{}))
}

func (q *WorkOrderQuery) One() *model.WorkOrder {
	return q.one(q.where().Model(&model.WorkOrder{}))
}

func (q *WorkOrderQuery) Count() int64 {
	return q.count(q.where())
}

func (q *WorkOrderQuery) Update(updates map[string]any) error {
	return q.update(q.where(), updates)
}

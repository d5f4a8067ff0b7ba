package database

import (
	"gorm.io/gorm"

	"github.com/dormhub/dormdash/pkg/model"
)

type RoomQuery struct {
	Query[model.Room]
	id    string
	floor *int
}

func NewRoomQuery(db *gorm.DB) *RoomQuery {
	q := new(RoomQuery)
	q.setDefaults(db, "id ASC")

	return q
}

func (q *RoomQuery) Limit(n int) *RoomQuery {
	q.limit = n
	return q
}

func (q *RoomQuery) Id(id string) *RoomQuery {
	q.id = id
	return q
}

func (q *RoomQuery) Floor(n int) *RoomQuery {
	q.floor = &n
	return q
}

func (q *RoomQuery) where() *gorm.DB {
	tx := q.db

	if q.id != "" {
		tx = tx.Where("id = ?", q.id)
	}

	if q.floor != nil {
		tx = tx.Where("floor = ?", *q.floor)
	}

	return tx
}

func (q *RoomQuery) Get() []*model.Room {
	return q.get(q.where().Model(&model.Room{}))
}

func (q *RoomQuery) One() *model.Room {
	return q.one(q.where().Model(&model.Room{}))
}

func (q *RoomQuery) Count() int64 {
	return q.count(q.where())
}

package database

import (
	"time"

	"gorm.io/gorm"

	"github.com/dormhub/dormdash/pkg/model"
)

type InviteQuery struct {
	Query[model.Invite]
	id            string
	group         string
	status        model.InviteStatus
	createdAfter  *time.Time
	createdBefore *time.Time
}

func NewInviteQuery(db *gorm.DB) *InviteQuery {
	q := new(InviteQuery)
	q.setDefaults(db, "created_at DESC")

	return q
}

func (q *InviteQuery) Order(s string) *InviteQuery {
	q.order = s
	return q
}

func (q *InviteQuery) Limit(n int) *InviteQuery {
	q.limit = n
	return q
}

func (q *InviteQuery) Id(id string) *InviteQuery {
	q.id = id
	return q
}

func (q *InviteQuery) Group(group string) *InviteQuery {
	q.group = group
	return q
}

func (q *InviteQuery) Status(s model.InviteStatus) *InviteQuery {
	q.status = s
	return q
}

func (q *InviteQuery) CreatedAfter(t time.Time) *InviteQuery {
	q.createdAfter = &t
	return q
}

func (q *InviteQuery) CreatedBefore(t time.Time) *InviteQuery {
	q.createdBefore = &t
	return q
}

func (q *InviteQuery) where() *gorm.DB {
	tx := q.db

	if q.id != "" {
		tx = tx.Where("id = ?", q.id)
	}

	if q.group != "" {
		tx = tx.Where("`group` = ?", q.group)
	}

	if q.status != "" {
		tx = tx.Where("status = ?", q.status)
	}

	if q.createdAfter != nil {
		tx = tx.Where("created_at >= ?", *q.createdAfter)
	}

	if q.createdBefore != nil {
		tx = tx.Where("created_at < ?", *q.createdBefore)
	}

	return tx
}

func (q *InviteQuery) Get() []*model.Invite {
	return q.get(q.where().Model(&model.Invite{}))
}

func (q *InviteQuery) One() *model.Invite {
	return q.one(q.where().Model(&model.Invite{}))
}

func (q *InviteQuery) Count() int64 {
	return q.count(q.where())
}

func (q *InviteQuery) Update(updates map[string]any) error {
	return q.update(q.where(), updates)
}

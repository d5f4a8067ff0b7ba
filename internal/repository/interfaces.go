package repository

import (
	"github.com/dormhub/dormdash/pkg/model"
)

type WorkOrderRepository interface {
	Store(o *model.WorkOrder)
	Get(id string) *model.WorkOrder
	Remove(id string)
	ForEach(f func(o *model.WorkOrder) bool)
	Snapshot() []*model.WorkOrder
}

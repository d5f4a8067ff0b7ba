package repository

import (
	"github.com/dormhub/dormdash/pkg/model"
	"github.com/dormhub/dormdash/pkg/util"
)

type WorkOrderMemoryRepo struct {
	orders *util.Holder[*model.WorkOrder]
}

func NewWorkOrderMemoryRepo() *WorkOrderMemoryRepo {
	return &WorkOrderMemoryRepo{orders: util.NewHolder[*model.WorkOrder]()}
}

func (r *WorkOrderMemoryRepo) Store(o *model.WorkOrder) {
	if o != nil {
		r.orders.Add(o)
	}
}

func (r *WorkOrderMemoryRepo) Get(id string) *model.WorkOrder {
	if o, ok := r.orders.Get(id); ok {
		return o
	}

	return nil
}

func (r *WorkOrderMemoryRepo) Remove(id string) {
	r.orders.Remove(id)
}

func (r *WorkOrderMemoryRepo) ForEach(f func(o *model.WorkOrder) bool) {
	r.orders.All(f)
}

// Snapshot returns the current set as a slice for aggregation.
func (r *WorkOrderMemoryRepo) Snapshot() []*model.WorkOrder {
	res := make([]*model.WorkOrder, 0, r.orders.Len())

	r.orders.All(func(o *model.WorkOrder) bool {
		res = append(res, o)

		return true
	})

	return res
}

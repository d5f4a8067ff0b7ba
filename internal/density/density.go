package density

import (
	"github.com/dormhub/dormdash/pkg/model"
)

type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

type Bucket struct {
	Count int  `json:"count"`
	Tier  Tier `json:"tier"`
}

// Aggregate reduces a work-order snapshot to per-room load. Completed
// orders are skipped, rooms with no open orders are absent from the
// result. Unknown room ids pass through untouched.
func Aggregate(orders []*model.WorkOrder) map[string]Bucket {
	res := make(map[string]Bucket)

	for _, o := range orders {
		if o == nil || !o.Status.Open() {
			continue
		}

		b := res[o.RoomID]
		b.Count++
		b.Tier = tierFor(b.Count)
		res[o.RoomID] = b
	}

	return res
}

func tierFor(count int) Tier {
	switch {
	case count >= 3:
		return TierHigh
	case count == 2:
		return TierMedium
	default:
		return TierLow
	}
}

package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dormhub/dormdash/internal/callbacks"
	"github.com/dormhub/dormdash/internal/countdown"
	"github.com/dormhub/dormdash/pkg/model"
	"github.com/dormhub/dormdash/pkg/util"
)

// ResponseWindow is how long an invitee has to answer.
const ResponseWindow = time.Minute * 10

var (
	ErrInvalidTransition = errors.New("invite is not pending")
	ErrNotFound          = errors.New("invite not found")
)

//nolint:gochecknoglobals
var (
	respondedMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dormdash",
		Name:      "invites_responded",
		Help:      "The total number of invite responses",
	}, []string{"decision"})

	expiredMetric = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dormdash",
		Name:      "invites_expired",
		Help:      "The total number of invites expired",
	})

	raceMetric = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dormdash",
		Name:      "expiry_races_ignored",
		Help:      "Late expiry events dropped because a response won",
	})
)

type record struct {
	mx  sync.Mutex
	inv *model.Invite
}

func (r *record) Key() string {
	return r.inv.ID
}

// Engine is the only writer of invite status. All transitions out of
// pending go through Respond or Expire, each atomic per invite.
type Engine struct {
	logger  *slog.Logger
	now     func() time.Time
	reg     *countdown.Registry
	events  *callbacks.Callback[*Event]
	invites *util.Holder[*record]
}

func New(logger *slog.Logger) *Engine {
	return &Engine{
		logger:  logger.With(slog.String("logger", "engine")),
		now:     time.Now,
		reg:     countdown.New(logger),
		events:  callbacks.New[*Event](),
		invites: util.NewHolder[*record](),
	}
}

// SetClock replaces the time source for the engine and its countdowns.
// Call before any invite is added.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
	e.reg.SetClock(now)
}

// Remaining returns the time left in the response window and whether
// the window is already closed. Pure, no side effects.
func Remaining(inv *model.Invite, now time.Time) (time.Duration, bool) {
	remaining := inv.Deadline(ResponseWindow).Sub(now)

	if remaining <= 0 {
		return 0, true
	}

	return remaining, false
}

// Add puts an invite into the working set and starts its countdown if
// it is still pending. An invite past its window expires right away.
func (e *Engine) Add(inv *model.Invite) {
	rec := &record{inv: inv}
	e.invites.Add(rec)

	if inv.Status != model.StatusPending {
		return
	}

	if _, expired := Remaining(inv, e.now()); expired {
		e.Expire(inv.ID)

		return
	}

	e.watch(rec)
}

func (e *Engine) watch(rec *record) {
	id := rec.inv.ID

	e.reg.Start(id, rec.inv.Deadline(ResponseWindow),
		func(remaining time.Duration) {
			rec.mx.Lock()
			if rec.inv.Status != model.StatusPending {
				rec.mx.Unlock()

				return
			}
			w := rec.inv.ToWeb(remaining)
			rec.mx.Unlock()

			e.events.Broadcast(&Event{Type: EventTick, Invite: w})
		},
		func() {
			e.Expire(id)
		})
}

// Respond applies a user decision. The status check and the write happen
// under the invite's lock, so a decision registered before the expiry
// event always wins.
func (e *Engine) Respond(id string, decision model.InviteStatus) error {
	if !decision.Decision() {
		return fmt.Errorf("invalid decision %s", decision)
	}

	rec, ok := e.invites.Get(id)
	if !ok {
		return ErrNotFound
	}

	rec.mx.Lock()
	if rec.inv.Status != model.StatusPending {
		rec.mx.Unlock()

		return ErrInvalidTransition
	}

	rec.inv.Status = decision
	rec.inv.UpdatedAt = e.now()
	w := rec.inv.ToWeb(0)
	rec.mx.Unlock()

	e.reg.Cancel(id)

	respondedMetric.With(prometheus.Labels{"decision": string(decision)}).Inc()

	typ := EventAccepted
	if decision == model.StatusDeclined {
		typ = EventDeclined
	}

	e.events.Broadcast(&Event{Type: typ, Invite: w})

	return nil
}

// Expire closes an invite whose countdown reached zero. A non-pending
// invite means the user answered between the last tick and this firing;
// that is not an error, the event just does nothing.
func (e *Engine) Expire(id string) {
	rec, ok := e.invites.Get(id)
	if !ok {
		return
	}

	rec.mx.Lock()
	if rec.inv.Status != model.StatusPending {
		rec.mx.Unlock()

		raceMetric.Inc()
		e.logger.Debug("late expiry ignored", slog.String("id", id))

		return
	}

	rec.inv.Status = model.StatusExpired
	rec.inv.UpdatedAt = e.now()
	w := rec.inv.ToWeb(0)
	rec.mx.Unlock()

	expiredMetric.Inc()
	e.events.Broadcast(&Event{Type: EventExpired, Invite: w})
}

// Reload replaces the working set from a fresh snapshot. All old
// countdowns are cancelled before any new one starts.
func (e *Engine) Reload(invites []*model.Invite) {
	e.reg.CancelAll()
	e.invites.Clear()

	for _, inv := range invites {
		e.Add(inv)
	}
}

func (e *Engine) Get(id string) (model.Invite, bool) {
	rec, ok := e.invites.Get(id)
	if !ok {
		return model.Invite{}, false
	}

	rec.mx.Lock()
	defer rec.mx.Unlock()

	return *rec.inv, true
}

func (e *Engine) WebList() []*model.WebInvite {
	res := make([]*model.WebInvite, 0)
	now := e.now()

	e.invites.All(func(rec *record) bool {
		rec.mx.Lock()
		remaining, _ := Remaining(rec.inv, now)
		res = append(res, rec.inv.ToWeb(remaining))
		rec.mx.Unlock()

		return true
	})

	sort.Slice(res, func(i, j int) bool {
		if res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].ID < res[j].ID
		}

		return res[i].CreatedAt.Before(res[j].CreatedAt)
	})

	return res
}

// Purge drops terminal invites not touched for retention. They stay in
// the database, only the working set shrinks.
func (e *Engine) Purge(retention time.Duration) int {
	deadline := e.now().Add(-retention)
	toDelete := make([]string, 0)

	e.invites.All(func(rec *record) bool {
		rec.mx.Lock()
		if rec.inv.Status.Terminal() && rec.inv.UpdatedAt.Before(deadline) {
			toDelete = append(toDelete, rec.inv.ID)
		}
		rec.mx.Unlock()

		return true
	})

	for _, id := range toDelete {
		e.invites.Remove(id)
		e.logger.Debug("purging invite " + id)
	}

	return len(toDelete)
}

func (e *Engine) Subscribe(name string, fn func(msg *Event) bool) {
	e.events.SubscribeNamed(name, fn)
}

func (e *Engine) Unsubscribe(name string) {
	e.events.Unsubscribe(name)
}

func (e *Engine) ActiveCountdowns() int {
	return e.reg.Active()
}

func (e *Engine) Stop() {
	e.reg.CancelAll()
}

package countdown

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const tickInterval = time.Second

// Registry owns every running countdown. Nothing else starts or cancels
// countdown goroutines.
type Registry struct {
	logger   *slog.Logger
	now      func() time.Time
	interval time.Duration

	mx      sync.Mutex
	handles map[string]*handle
}

type handle struct {
	id        string
	deadline  time.Time
	stop      chan struct{}
	cancelled int32
}

func New(logger *slog.Logger) *Registry {
	return &Registry{
		logger:   logger.With(slog.String("logger", "countdown")),
		now:      time.Now,
		interval: tickInterval,
		handles:  make(map[string]*handle),
	}
}

// SetClock replaces the time source. Call before Start.
func (r *Registry) SetClock(now func() time.Time) {
	r.now = now
}

// SetInterval replaces the tick period. Call before Start.
func (r *Registry) SetInterval(d time.Duration) {
	r.interval = d
}

func (h *handle) cancel() {
	if atomic.CompareAndSwapInt32(&h.cancelled, 0, 1) {
		close(h.stop)
	}
}

func (h *handle) isCancelled() bool {
	return atomic.LoadInt32(&h.cancelled) == 1
}

// Start schedules a countdown for id. An already running countdown for
// the same id is cancelled first, so one id never ticks twice.
func (r *Registry) Start(id string, deadline time.Time, onTick func(remaining time.Duration), onExpire func()) {
	h := &handle{id: id, deadline: deadline, stop: make(chan struct{})}

	r.mx.Lock()
	if old, ok := r.handles[id]; ok {
		old.cancel()
	}

	r.handles[id] = h
	r.mx.Unlock()

	go r.run(h, onTick, onExpire)
}

func (r *Registry) run(h *handle, onTick func(remaining time.Duration), onExpire func()) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			// the flag, not the ticker, decides - a tick that was already
			// queued when cancel happened must do nothing
			if h.isCancelled() {
				return
			}

			remaining := h.deadline.Sub(r.now())

			if remaining > 0 {
				onTick(remaining)

				continue
			}

			r.drop(h)

			if !h.isCancelled() {
				onExpire()
			}

			return
		}
	}
}

func (r *Registry) drop(h *handle) {
	r.mx.Lock()
	defer r.mx.Unlock()

	if r.handles[h.id] == h {
		delete(r.handles, h.id)
	}
}

func (r *Registry) Cancel(id string) {
	r.mx.Lock()
	defer r.mx.Unlock()

	if h, ok := r.handles[id]; ok {
		h.cancel()
		delete(r.handles, id)
	}
}

// CancelAll neutralizes every countdown before clearing the registry.
// After it returns no previously scheduled callback fires.
func (r *Registry) CancelAll() {
	r.mx.Lock()
	defer r.mx.Unlock()

	if n := len(r.handles); n > 0 {
		r.logger.Debug(fmt.Sprintf("cancelling %d countdowns", n))
	}

	for _, h := range r.handles {
		h.cancel()
	}

	r.handles = make(map[string]*handle)
}

func (r *Registry) Active() int {
	r.mx.Lock()
	defer r.mx.Unlock()

	return len(r.handles)
}

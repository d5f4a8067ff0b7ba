package countdown

import (
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestRegistry(interval time.Duration) *Registry {
	r := New(slog.Default())
	r.interval = interval

	return r
}

func TestExpireExactlyOnce(t *testing.T) {
	r := newTestRegistry(time.Millisecond * 5)

	var ticks, expires, badTicks int32

	r.Start("i1", time.Now().Add(time.Millisecond*30),
		func(remaining time.Duration) {
			if remaining <= 0 {
				atomic.AddInt32(&badTicks, 1)
			}

			atomic.AddInt32(&ticks, 1)
		},
		func() {
			atomic.AddInt32(&expires, 1)
		})

	time.Sleep(time.Millisecond * 200)

	require.Equal(t, int32(1), atomic.LoadInt32(&expires))
	require.Equal(t, int32(0), atomic.LoadInt32(&badTicks))
	require.Equal(t, 0, r.Active())
}

func TestCancelAllStopsQueuedTicks(t *testing.T) {
	r := newTestRegistry(time.Millisecond * 5)

	var fired int32

	for _, id := range []string{"i1", "i2", "i3"} {
		r.Start(id, time.Now().Add(time.Millisecond*20),
			func(remaining time.Duration) { atomic.AddInt32(&fired, 1) },
			func() { atomic.AddInt32(&fired, 1) })
	}

	require.Equal(t, 3, r.Active())

	r.CancelAll()

	require.Equal(t, 0, r.Active())

	time.Sleep(time.Millisecond * 200)

	require.Equal(t, int32(0), atomic.LoadInt32(&fired))
}

func TestCancelOne(t *testing.T) {
	r := newTestRegistry(time.Millisecond * 5)

	var expired1, expired2 int32

	r.Start("i1", time.Now().Add(time.Millisecond*30), func(time.Duration) {}, func() { atomic.AddInt32(&expired1, 1) })
	r.Start("i2", time.Now().Add(time.Millisecond*30), func(time.Duration) {}, func() { atomic.AddInt32(&expired2, 1) })

	r.Cancel("i1")

	time.Sleep(time.Millisecond * 200)

	require.Equal(t, int32(0), atomic.LoadInt32(&expired1))
	require.Equal(t, int32(1), atomic.LoadInt32(&expired2))
}

func TestStartReplacesHandle(t *testing.T) {
	r := newTestRegistry(time.Millisecond * 5)

	var oldExpired, expires int32

	r.Start("i1", time.Now().Add(time.Hour),
		func(time.Duration) {},
		func() { atomic.AddInt32(&oldExpired, 1) })

	r.Start("i1", time.Now().Add(time.Millisecond*20),
		func(time.Duration) {},
		func() { atomic.AddInt32(&expires, 1) })

	require.Equal(t, 1, r.Active())

	time.Sleep(time.Millisecond * 200)

	require.Equal(t, int32(0), atomic.LoadInt32(&oldExpired))
	require.Equal(t, int32(1), atomic.LoadInt32(&expires))
	require.Equal(t, 0, r.Active())
}

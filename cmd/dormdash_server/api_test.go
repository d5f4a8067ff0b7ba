package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dormhub/dormdash/internal/config"
	"github.com/dormhub/dormdash/internal/density"
	"github.com/dormhub/dormdash/pkg/model"
)

type TestApp struct {
	*App
	api *HttpServer
}

func NewTestApp() *TestApp {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))

	cfg := config.NewAppConfig()
	cfg.Set("db", ":memory:")
	cfg.Set("rooms_file", "")

	app := &TestApp{App: NewApp(cfg)}
	app.api = NewHttp(app.App)

	return app
}

func (ta *TestApp) request(t *testing.T, method, url string, body any) *http.Response {
	var r io.Reader

	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, url, r)
	req.Header.Set("Content-Type", "application/json")

	res, err := ta.api.f.Test(req, -1)
	require.NoError(t, err)

	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	var v T

	defer res.Body.Close()

	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))

	return v
}

func TestInviteLifecycle(t *testing.T) {
	ta := NewTestApp()

	res := ta.request(t, http.MethodPost, "/api/invite",
		map[string]string{"from": "anna", "group": "movie night", "room": "101"})
	require.Equal(t, http.StatusOK, res.StatusCode)

	created := decode[*model.WebInvite](t, res)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, 600, created.RemainingSec)

	res = ta.request(t, http.MethodGet, "/api/invite", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	list := decode[[]*model.WebInvite](t, res)
	require.Len(t, list, 1)
	assert.Greater(t, list[0].RemainingSec, 0)

	res = ta.request(t, http.MethodPost, "/api/invite/"+created.ID+"/respond",
		map[string]string{"decision": "accepted"})
	require.Equal(t, http.StatusOK, res.StatusCode)

	answered := decode[*model.WebInvite](t, res)
	assert.Equal(t, "accepted", answered.Status)

	// terminal, second response is refused
	res = ta.request(t, http.MethodPost, "/api/invite/"+created.ID+"/respond",
		map[string]string{"decision": "declined"})
	require.Equal(t, http.StatusConflict, res.StatusCode)

	// the database saw the accepted transition
	saved := ta.dbm.InviteQuery().Id(created.ID).One()
	require.NotNil(t, saved)
	require.Equal(t, model.StatusAccepted, saved.Status)

	require.Equal(t, 0, ta.eng.ActiveCountdowns())
}

func TestStartupExpiresStaleInvites(t *testing.T) {
	ta := NewTestApp()

	stale := &model.Invite{
		ID:        "s1",
		From:      "anna",
		Group:     "movie night",
		CreatedAt: time.Now().Add(-time.Hour),
		Status:    model.StatusPending,
	}
	require.NoError(t, ta.dbm.Save(stale))

	ta.startup()

	inv, ok := ta.eng.Get("s1")
	require.True(t, ok)
	require.Equal(t, model.StatusExpired, inv.Status)

	// the expiry event is delivered asynchronously, the database must
	// catch up so a restart does not re-expire the same invite
	require.Eventually(t, func() bool {
		saved := ta.dbm.InviteQuery().Id("s1").One()

		return saved != nil && saved.Status == model.StatusExpired
	}, time.Second*2, time.Millisecond*10)
}

func TestCleanerStops(t *testing.T) {
	ta := NewTestApp()

	done := make(chan struct{})

	go func() {
		ta.cleaner()
		close(done)
	}()

	close(ta.stop)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleaner did not stop")
	}
}

func TestInviteBadRequests(t *testing.T) {
	ta := NewTestApp()

	res := ta.request(t, http.MethodPost, "/api/invite", map[string]string{"from": "anna"})
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = ta.request(t, http.MethodPost, "/api/invite/nope/respond",
		map[string]string{"decision": "accepted"})
	require.Equal(t, http.StatusNotFound, res.StatusCode)

	res = ta.request(t, http.MethodPost, "/api/invite", map[string]string{"from": "anna", "group": "g"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	created := decode[*model.WebInvite](t, res)

	res = ta.request(t, http.MethodPost, "/api/invite/"+created.ID+"/respond",
		map[string]string{"decision": "maybe"})
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestWorkOrdersAndDensity(t *testing.T) {
	ta := NewTestApp()

	for _, task := range []string{"faucet", "lamp", "door"} {
		res := ta.request(t, http.MethodPost, "/api/workorder",
			map[string]string{"room_id": "101", "task": task, "priority": "medium"})
		require.Equal(t, http.StatusOK, res.StatusCode)
	}

	res := ta.request(t, http.MethodPost, "/api/workorder",
		map[string]string{"room_id": "202", "task": "window"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	w202 := decode[*model.WebWorkOrder](t, res)

	res = ta.request(t, http.MethodGet, "/api/density", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	d := decode[map[string]density.Bucket](t, res)
	require.Len(t, d, 2)
	assert.Equal(t, density.Bucket{Count: 3, Tier: density.TierHigh}, d["101"])
	assert.Equal(t, density.Bucket{Count: 1, Tier: density.TierLow}, d["202"])

	// completing the only order in 202 removes the room from the map
	res = ta.request(t, http.MethodPut, "/api/workorder/"+w202.ID+"/status",
		map[string]string{"status": "completed"})
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = ta.request(t, http.MethodGet, "/api/density", nil)
	d = decode[map[string]density.Bucket](t, res)
	require.Len(t, d, 1)

	_, ok := d["202"]
	require.False(t, ok)

	// completed is terminal
	res = ta.request(t, http.MethodPut, "/api/workorder/"+w202.ID+"/status",
		map[string]string{"status": "pending"})
	require.Equal(t, http.StatusConflict, res.StatusCode)

	res = ta.request(t, http.MethodPut, "/api/workorder/nope/status",
		map[string]string{"status": "completed"})
	require.Equal(t, http.StatusNotFound, res.StatusCode)

	res = ta.request(t, http.MethodPut, "/api/workorder/"+w202.ID+"/status",
		map[string]string{"status": "broken"})
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestRooms(t *testing.T) {
	ta := NewTestApp()

	require.NoError(t, ta.dbm.Save(&model.Room{ID: "101", Name: "101", Floor: 1, Capacity: 2}))
	require.NoError(t, ta.dbm.Save(&model.Room{ID: "202", Name: "202", Floor: 2, Capacity: 3}))

	res := ta.request(t, http.MethodGet, "/api/room", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	rooms := decode[[]*model.Room](t, res)
	require.Len(t, rooms, 2)
	assert.Equal(t, "101", rooms[0].ID)
}

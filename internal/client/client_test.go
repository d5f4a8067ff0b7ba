package client

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dormhub/dormdash/pkg/model"
)

func TestFetchInvites(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/invite", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"i1","from":"anna","group":"g1","status":"pending","remaining_sec":599}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, slog.Default())

	invites, err := c.FetchInvites(context.Background())
	require.NoError(t, err)
	require.Len(t, invites, 1)
	assert.Equal(t, "i1", invites[0].ID)
	assert.Equal(t, 599, invites[0].RemainingSec)
}

func TestFetchFailureYieldsEmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, slog.Default())

	rooms, err := c.FetchRooms(context.Background())
	require.Error(t, err)
	require.NotNil(t, rooms)
	require.Empty(t, rooms)

	var te *TransportError
	require.ErrorAs(t, err, &te)
}

func TestSubmitInviteResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/invite/i1/respond", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, slog.Default())

	require.NoError(t, c.SubmitInviteResponse(context.Background(), "i1", model.StatusAccepted))
}

func TestSubmitConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	c := New(srv.URL, slog.Default())

	err := c.SubmitInviteResponse(context.Background(), "i1", model.StatusDeclined)
	require.Error(t, err)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusConflict, te.Status)
}

package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"krishi/internal/guard"
	"krishi/internal/model"
	"krishi/internal/session"
)

func TestSessionHandler_Current(t *testing.T) {
	env := newTestEnv(t)
	<-env.registry.Get("test").Ready()

	rec := env.do(http.MethodGet, "/api/session", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"state":"anonymous","isAuthenticated":false,"isLoading":false,"user":null}`, rec.Body.String())

	env.login(t)
	rec = env.do(http.MethodGet, "/api/session", "")
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "authenticated", resp.State)
	assert.True(t, resp.IsAuthenticated)
	require.NotNil(t, resp.User)
	assert.Equal(t, "Mandya", resp.User.District)
}

func TestNewSessionResponse_LoadingMatchesGuard(t *testing.T) {
	user := &model.User{ID: "1", Name: "Priya Sharma"}
	for _, snap := range []session.Snapshot{
		{State: session.StateInitializing},
		{State: session.StateAuthenticating},
		{State: session.StateAnonymous},
		{State: session.StateAuthenticated, User: user},
	} {
		t.Run(snap.State.String(), func(t *testing.T) {
			resp := newSessionResponse(snap)
			assert.Equal(t, guard.Evaluate(snap) == guard.Loading, resp.IsLoading)
			assert.Equal(t, guard.Evaluate(snap) == guard.Admit, resp.IsAuthenticated)
		})
	}
	assert.True(t, newSessionResponse(session.Snapshot{State: session.StateAuthenticating}).IsLoading)
}

type sseEvent struct {
	name string
	data SessionResponse
}

func readEvents(t *testing.T, sc *bufio.Scanner, events chan<- sseEvent) {
	defer close(events)
	var ev sseEvent
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			assert.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev.data))
		case line == "":
			events <- ev
			ev = sseEvent{}
		}
	}
}

func nextEvent(t *testing.T, events <-chan sseEvent) sseEvent {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "stream closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event")
		return sseEvent{}
	}
}

func TestSessionHandler_Watch(t *testing.T) {
	env := newTestEnv(t)
	<-env.registry.Get("test").Ready()
	srv := httptest.NewServer(env.e)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/session/watch", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := make(chan sseEvent, 16)
	go readEvents(t, bufio.NewScanner(resp.Body), events)

	ev := nextEvent(t, events)
	assert.Equal(t, "redirect", ev.name)
	assert.Equal(t, "anonymous", ev.data.State)

	env.login(t)
	for ev = nextEvent(t, events); ev.name == "loading"; ev = nextEvent(t, events) {
		assert.Equal(t, "authenticating", ev.data.State)
		assert.True(t, ev.data.IsLoading)
	}
	assert.Equal(t, "admit", ev.name)
	assert.Equal(t, "Rajesh Kumar Gowda", ev.data.User.Name)

	env.do(http.MethodPost, "/api/auth/logout", "")
	ev = nextEvent(t, events)
	assert.Equal(t, "redirect", ev.name)
	assert.Nil(t, ev.data.User)
}

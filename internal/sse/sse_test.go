package sse

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(slog.New(slog.DiscardHandler))
	m.Start(context.Background())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = m.Shutdown(ctx)
	})
	return m
}

func TestManager_BroadcastsToClients(t *testing.T) {
	m := newTestManager(t)

	a, err := m.Connect()
	require.NoError(t, err)
	b, err := m.Connect()
	require.NoError(t, err)
	assert.Equal(t, 2, m.ClientCount())
	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, strings.HasPrefix(a.ID, "client-"))

	at := time.Date(2026, 1, 18, 9, 0, 0, 0, time.UTC)
	m.CatalogRevalidated("rooms", 12, at)

	for _, c := range []*Client{a, b} {
		select {
		case ev := <-c.EventChan:
			assert.Equal(t, EventCatalogRevalidated, ev.Type)
			assert.Equal(t, at, ev.Timestamp)
			assert.Equal(t, CatalogRevalidatedData{Tag: "rooms", Items: 12}, ev.Data)
			assert.True(t, strings.HasPrefix(ev.ID, "evt-"))
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}

	m.Disconnect(a.ID)
	m.Disconnect(a.ID) // second call is a no-op
	assert.Equal(t, 1, m.ClientCount())
}

func TestManager_DropsForSlowClient(t *testing.T) {
	m := newTestManager(t)

	c, err := m.Connect()
	require.NoError(t, err)

	for range cap(c.EventChan) + 5 {
		m.TemplatesReloaded([]string{"room.html"})
	}

	require.Eventually(t, func() bool { return len(c.EventChan) == cap(c.EventChan) }, time.Second, time.Millisecond)
}

func TestManager_Shutdown(t *testing.T) {
	m := NewManager(slog.New(slog.DiscardHandler))
	m.Start(context.Background())

	c, err := m.Connect()
	require.NoError(t, err)

	require.NoError(t, m.Shutdown(context.Background()))
	require.NoError(t, m.Shutdown(context.Background()), "second shutdown is a no-op")

	_, open := <-c.Done
	assert.False(t, open)
	assert.Equal(t, 0, m.ClientCount())

	m.Emit(NewHeartbeatEvent()) // dropped, must not panic

	_, err = m.Connect()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestManager_ShutdownWithoutStart(t *testing.T) {
	m := NewManager(slog.New(slog.DiscardHandler))
	_, err := m.Connect()
	require.NoError(t, err)

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, 0, m.ClientCount())
}

func readEvent(t *testing.T, r *bufio.Reader) (string, Event) {
	t.Helper()
	var name string
	var ev Event
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			return name, ev
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		}
	}
}

func TestHandler_Stream(t *testing.T) {
	m := newTestManager(t)
	h := NewHandler(m, slog.New(slog.DiscardHandler))
	h.heartbeat = 20 * time.Millisecond

	server := httptest.NewServer(h)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	reader := bufio.NewReader(resp.Body)

	name, ev := readEvent(t, reader)
	assert.Equal(t, "connected", name)
	assert.Equal(t, EventConnected, ev.Type)

	require.Eventually(t, func() bool { return m.ClientCount() == 1 }, time.Second, time.Millisecond)
	m.CatalogRevalidated("posts", 3, time.Now())

	// Heartbeats may arrive first.
	for {
		name, ev = readEvent(t, reader)
		if name != string(EventHeartbeat) {
			break
		}
	}
	assert.Equal(t, "catalog.revalidated", name)
	assert.Equal(t, EventCatalogRevalidated, ev.Type)

	cancel()
	require.Eventually(t, func() bool { return m.ClientCount() == 0 }, time.Second, time.Millisecond)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	m := newTestManager(t)
	h := NewHandler(m, slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/events", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

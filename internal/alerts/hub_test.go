package alerts

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herdbook/internal/countdown"
)

// fakeClock is a settable clock safe for use from the hub goroutine
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

type testEnv struct {
	hub    *Hub
	clock  *fakeClock
	server *httptest.Server
	cancel context.CancelFunc
	done   chan error
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()

	clock := &fakeClock{now: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)}
	hub := NewHub(opts, clock.Now, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.Run(ctx) }()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))

	env := &testEnv{hub: hub, clock: clock, server: server, cancel: cancel, done: done}
	t.Cleanup(func() {
		server.Close()
		cancel()
		<-done
	})
	return env
}

func (e *testEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	hello := readMessage(t, conn)
	require.Equal(t, TypeConnection, hello.Type)
	require.NotEmpty(t, hello.ClientID)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) ServerMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg ServerMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWatchRepliesWithStatus(t *testing.T) {
	env := newTestEnv(t, Options{TickInterval: time.Hour})
	conn := env.dial(t)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: TypeWatch, ID: "lot-7", Target: "2026-10-21"}))

	msg := readMessage(t, conn)
	assert.Equal(t, TypeCountdown, msg.Type)
	assert.Equal(t, "lot-7", msg.ID)
	require.NotNil(t, msg.Status)
	assert.Equal(t, countdown.BucketImminent, msg.Status.Bucket)
	assert.Equal(t, "3d left", msg.Status.Label)
	assert.NotEmpty(t, msg.Timestamp)
}

func TestInvalidMessagesGetErrors(t *testing.T) {
	env := newTestEnv(t, Options{TickInterval: time.Hour})
	conn := env.dial(t)

	tests := []struct {
		name  string
		frame string
	}{
		{"malformed json", `{"type":`},
		{"unknown type", `{"type":"subscribe"}`},
		{"watch without id", `{"type":"watch","target":"2026-11-02"}`},
		{"bad target", `{"type":"watch","id":"lot-1","target":"tomorrow"}`},
		{"unwatch unknown", `{"type":"unwatch","id":"lot-404"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tt.frame)))
			msg := readMessage(t, conn)
			assert.Equal(t, TypeError, msg.Type)
			assert.NotEmpty(t, msg.Error)
		})
	}
}

func TestHeartbeatIsSilent(t *testing.T) {
	env := newTestEnv(t, Options{TickInterval: time.Hour})
	conn := env.dial(t)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: TypeHeartbeat}))
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: TypeWatch, ID: "a", Target: "2026-10-18"}))

	// the first reply answers the watch, not the heartbeat
	msg := readMessage(t, conn)
	assert.Equal(t, TypeCountdown, msg.Type)
	assert.Equal(t, countdown.BucketDue, msg.Status.Bucket)
}

func TestUnwatch(t *testing.T) {
	env := newTestEnv(t, Options{TickInterval: time.Hour})
	conn := env.dial(t)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: TypeWatch, ID: "lot-7", Target: "2026-11-02"}))
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: TypeUnwatch, ID: "lot-7"}))
	msg := readMessage(t, conn)
	assert.Equal(t, TypeUnwatched, msg.Type)
	assert.Equal(t, "lot-7", msg.ID)
}

func TestWatchLimit(t *testing.T) {
	env := newTestEnv(t, Options{TickInterval: time.Hour, MaxWatches: 1})
	conn := env.dial(t)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: TypeWatch, ID: "a", Target: "2026-11-02"}))
	assert.Equal(t, TypeCountdown, readMessage(t, conn).Type)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: TypeWatch, ID: "b", Target: "2026-11-02"}))
	assert.Equal(t, TypeError, readMessage(t, conn).Type)

	// re-watching an existing id replaces it
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: TypeWatch, ID: "a", Target: "2026-12-02"}))
	assert.Equal(t, TypeCountdown, readMessage(t, conn).Type)
}

func TestTickPushesOnlyChanges(t *testing.T) {
	env := newTestEnv(t, Options{TickInterval: 20 * time.Millisecond})
	conn := env.dial(t)

	// 8 days out is upcoming
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: TypeWatch, ID: "lot-7", Target: "2026-10-26"}))
	first := readMessage(t, conn)
	require.Equal(t, countdown.BucketUpcoming, first.Status.Bucket)

	// several ticks pass without a change, then the day rolls over
	time.Sleep(100 * time.Millisecond)
	env.clock.Advance(24 * time.Hour)

	msg := readMessage(t, conn)
	assert.Equal(t, TypeCountdown, msg.Type)
	assert.Equal(t, countdown.BucketImminent, msg.Status.Bucket)
	assert.Equal(t, "7d left", msg.Status.Label)
}

func TestClientCountAndShutdown(t *testing.T) {
	env := newTestEnv(t, Options{TickInterval: time.Hour})
	conn := env.dial(t)

	assert.Eventually(t, func() bool { return env.hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	env.cancel()
	<-env.hub.Done()

	// the write pump sends a close frame once the hub stops
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, env.hub.ClientCount())

	// new connections are refused after shutdown
	resp, err := http.Get(env.server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestCheckOrigin(t *testing.T) {
	hub := NewHub(Options{AllowedOrigins: []string{"https://farm.example"}}, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"https://farm.example", true},
		{"https://evil.example", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/alerts/ws", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		assert.Equal(t, tt.want, hub.checkOrigin(req), tt.origin)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	o.applyDefaults()
	assert.Greater(t, o.TickInterval, time.Duration(0))
	assert.Greater(t, o.SendBuffer, 0)
	assert.Less(t, o.PingPeriod, o.PongWait)
}

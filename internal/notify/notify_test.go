package notify

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSink struct {
	name string
	err  error
	got  []Notification
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Send(ctx context.Context, n Notification) error {
	s.got = append(s.got, n)
	return s.err
}

func TestMultiFansOutAndJoinsErrors(t *testing.T) {
	failing := &recordingSink{name: "broken", err: errors.New("boom")}
	ok := &recordingSink{name: "ok"}
	multi := NewMulti("app://open/", zap.NewNop(), failing, ok)

	err := multi.Notify(context.Background(), "reserve_trigger:1", "title", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	require.Len(t, ok.got, 1)
	assert.Equal(t, "reserve_trigger:1", ok.got[0].Tag)
	assert.Equal(t, "app://open/notifications/reserve_trigger:1", ok.got[0].Link)
	assert.Len(t, failing.got, 1)
}

func TestMultiEnabled(t *testing.T) {
	multi := NewMulti("", zap.NewNop())
	assert.False(t, multi.Enabled(), "no sinks")

	multi.AddSink(&recordingSink{name: "ok"})
	assert.True(t, multi.Enabled())

	multi.SetEnabled(false)
	assert.False(t, multi.Enabled())
}

func TestHubReplacesByTag(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, hub.Send(ctx, Notification{Tag: "a", Body: "first", SentAt: now}))
	require.NoError(t, hub.Send(ctx, Notification{Tag: "b", Body: "other", SentAt: now.Add(time.Second)}))
	require.NoError(t, hub.Send(ctx, Notification{Tag: "a", Body: "second", SentAt: now.Add(2 * time.Second)}))

	latest := hub.Latest()
	require.Len(t, latest, 2)
	assert.Equal(t, "b", latest[0].Tag)
	assert.Equal(t, "second", latest[1].Body)

	hub.Dismiss("a")
	assert.Len(t, hub.Latest(), 1)
}

func TestHubStreamsOverWebSocket(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()
	require.NoError(t, hub.Send(context.Background(), Notification{Tag: "old", Body: "replayed", SentAt: time.Now()}))

	server := httptest.NewServer(hub)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var replay Notification
	require.NoError(t, conn.ReadJSON(&replay))
	assert.Equal(t, "old", replay.Tag)

	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Send(context.Background(), Notification{Tag: "new", Body: "live", SentAt: time.Now()}))
	var live Notification
	require.NoError(t, conn.ReadJSON(&live))
	assert.Equal(t, "live", live.Body)
}

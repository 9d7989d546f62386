package realtime_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/realtime"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestHubBroadcastsToClients(t *testing.T) {
	hub := realtime.NewHub(zap.NewNop(), 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(realtime.NewEvent(realtime.CartItemAdded, "cart", "c-1", map[string]int{"quantity": 2}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got realtime.Event
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, realtime.CartItemAdded, got.Type)
	assert.Equal(t, "cart", got.Resource)
	assert.Equal(t, "c-1", got.ID)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHubDropsWhenQueueFull(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	hub := realtime.NewHub(zap.New(core), 1)

	hub.Publish(realtime.NewEvent(realtime.ProductCreated, "product", "1", nil))
	hub.Publish(realtime.NewEvent(realtime.ProductCreated, "product", "2", nil))

	assert.Equal(t, 1, logs.FilterMessage("Broadcast queue full, dropping event").Len())
}

func TestHubRunClosesClientsOnShutdown(t *testing.T) {
	hub := realtime.NewHub(zap.NewNop(), 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	srv := httptest.NewServer(hub)
	defer srv.Close()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, hub.ClientCount())
}

type recorder struct{ events []realtime.Event }

func (r *recorder) Publish(e realtime.Event) { r.events = append(r.events, e) }

func TestFanout(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	pub := realtime.Fanout{a, realtime.Nop{}, b}

	pub.Publish(realtime.NewEvent(realtime.CartCleared, "cart", "c-1", nil))

	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
	assert.Equal(t, realtime.CartCleared, b.events[0].Type)
}

func TestSocketServerRoutesCartEventsToRoom(t *testing.T) {
	assert.Equal(t, "cart:abc", realtime.CartRoom("abc"))

	sockets := realtime.NewSocketServer(zap.NewNop())
	go sockets.Serve()
	defer sockets.Close()

	assert.Equal(t, 0, sockets.Subscribers("abc"))
	assert.NotPanics(t, func() {
		sockets.Publish(realtime.NewEvent(realtime.CartItemAdded, "cart", "abc", nil))
		sockets.Publish(realtime.NewEvent(realtime.ProductCreated, "product", "p", nil))
	})

	mux := realtime.NewMux(realtime.NewHub(zap.NewNop(), 1), sockets)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/nope", nil))
	assert.Equal(t, 404, rec.Code)
}

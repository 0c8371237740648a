package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framecheck/internal/models"
)

type fixedStats struct{}

func (fixedStats) Stats() models.EngineStats {
	return models.EngineStats{CacheEntries: 7}
}

func newTestClient(id string) *ClientConnection {
	return &ClientConnection{
		ID:    id,
		Send:  make(chan WebSocketMessage, 16),
		Close: make(chan bool),
	}
}

func receive(t *testing.T, ch <-chan WebSocketMessage, msgType string) WebSocketMessage {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case msg, ok := <-ch:
			require.True(t, ok, "send channel closed")
			if msg.Type == msgType {
				return msg
			}
		case <-timeout:
			t.Fatalf("no %q message received", msgType)
		}
	}
}

func TestHubBroadcastsEstimations(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewWebSocketHub(nil, time.Hour)
	go hub.Run(ctx)

	client := newTestClient("a")
	require.True(t, hub.Register(client))

	hub.ObserveEstimation(models.EstimationRecord{Game: "Elden Ring", FPS: 66, Source: models.SourceLocal})

	msg := receive(t, client.Send, MessageEstimation)
	record, ok := msg.Data.(models.EstimationRecord)
	require.True(t, ok)
	assert.Equal(t, "Elden Ring", record.Game)
	assert.Equal(t, 66, record.FPS)
}

func TestHubPushesStats(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewWebSocketHub(fixedStats{}, 10*time.Millisecond)
	go hub.Run(ctx)

	client := newTestClient("a")
	require.True(t, hub.Register(client))

	msg := receive(t, client.Send, MessageStats)
	stats, ok := msg.Data.(models.EngineStats)
	require.True(t, ok)
	assert.Equal(t, 7, stats.CacheEntries)
}

func TestHubUnregisterClosesSend(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewWebSocketHub(nil, time.Hour)
	go hub.Run(ctx)

	client := newTestClient("a")
	require.True(t, hub.Register(client))
	hub.Unregister("a")

	_, ok := <-client.Send
	assert.False(t, ok)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubStopSignalsClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	hub := NewWebSocketHub(nil, time.Hour)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	client := newTestClient("a")
	require.True(t, hub.Register(client))
	cancel()
	<-stopped

	_, open := <-client.Close
	assert.False(t, open)
	assert.False(t, hub.Register(newTestClient("b")))
	hub.Unregister("a")
}

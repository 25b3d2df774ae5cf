package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesTopicSubscribers(t *testing.T) {
	hub := NewHub()
	a, cleanupA := hub.Subscribe("attendance")
	b, cleanupB := hub.Subscribe("other")
	defer cleanupB()

	assert.Equal(t, 1, hub.SubscriberCount("attendance"))
	assert.Equal(t, 2, hub.TotalSubscribers())

	hub.Publish(Event{Topic: "attendance", Event: "attendance.uploaded", Data: 3})

	select {
	case ev := <-a:
		assert.Equal(t, "attendance.uploaded", ev.Event)
		assert.Equal(t, 3, ev.Data)
	default:
		t.Fatal("expected event on subscribed topic")
	}

	select {
	case ev := <-b:
		t.Fatalf("unexpected event %v on other topic", ev)
	default:
	}

	cleanupA()
	cleanupA()
	_, open := <-a
	require.False(t, open)
	assert.Equal(t, 0, hub.SubscriberCount("attendance"))
}

func TestHub_PublishDoesNotBlockOnFullBuffer(t *testing.T) {
	hub := NewHub()
	_, cleanup := hub.Subscribe("attendance")
	defer cleanup()

	for i := 0; i < hub.bufferSize*3; i++ {
		hub.Publish(Event{Topic: "attendance", Event: "attendance.uploaded"})
	}
}

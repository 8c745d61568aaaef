package api

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fileshare-backend/internal/models"
)

func TestEventHub_PublishFansOutPerUser(t *testing.T) {
	t.Parallel()

	hub := NewEventHub()
	_, alice := hub.add(1)
	_, bob := hub.add(2)

	hub.Publish(1, Event{Action: "upload", File: models.FileInfo{Name: "a.txt"}})

	select {
	case ev := <-alice.send:
		assert.Equal(t, "upload", ev.Action)
		assert.Equal(t, "a.txt", ev.File.Name)
	default:
		t.Fatal("expected an event for user 1")
	}
	assert.Empty(t, bob.send)
}

func TestEventHub_SlowClientDoesNotBlock(t *testing.T) {
	t.Parallel()

	hub := NewEventHub()
	_, client := hub.add(1)

	// Fill the buffer, then publish past it. Publish must return.
	for i := 0; i < cap(client.send)+5; i++ {
		hub.Publish(1, Event{Action: "upload"})
	}
	assert.Len(t, client.send, cap(client.send))
}

func TestEventHub_RemoveStopsDelivery(t *testing.T) {
	t.Parallel()

	hub := NewEventHub()
	id, client := hub.add(1)
	hub.remove(id)

	hub.Publish(1, Event{Action: "delete"})
	assert.Empty(t, client.send)
}

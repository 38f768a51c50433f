package events_test

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/w3task/internal/events"
	"github.com/slok/w3task/internal/model"
)

func TestBusPublishSubscribe(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	bus := events.NewBus()
	defer bus.Close()

	created := bus.Subscribe(model.EventTaskCreated, 10)
	all := bus.SubscribeAll(10)

	bus.Publish(context.Background(),
		model.Event{Type: model.EventTaskCreated, TaskID: 1},
		model.Event{Type: model.EventTaskUpdated, TaskID: 1, Status: model.TaskStatusCanceled},
	)

	got := <-created
	assert.Equal(model.EventTaskCreated, got.Event.Type)
	_, err := ulid.Parse(got.ID)
	require.NoError(err)
	assert.False(got.PublishedAt.IsZero())

	// Type subscriptions only receive their type.
	select {
	case env := <-created:
		t.Fatalf("unexpected event %v", env)
	default:
	}

	// All subscriptions receive everything in order.
	first := <-all
	second := <-all
	assert.Equal(model.EventTaskCreated, first.Event.Type)
	assert.Equal(model.EventTaskUpdated, second.Event.Type)
	assert.Equal(got.ID, first.ID)
}

func TestBusFullSubscriberDoesNotBlock(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	ch := bus.SubscribeAll(1)
	bus.Publish(context.Background(),
		model.Event{Type: model.EventTitleUpdated, TaskID: 1},
		model.Event{Type: model.EventTitleUpdated, TaskID: 2},
	)

	env := <-ch
	assert.Equal(t, model.TaskID(1), env.Event.TaskID)
}

func TestBusClose(t *testing.T) {
	bus := events.NewBus()
	ch := bus.SubscribeAll(1)

	bus.Close()
	bus.Close()

	_, ok := <-ch
	assert.False(t, ok)

	// Subscribing or publishing after close is safe.
	late := bus.Subscribe(model.EventTaskCreated, 1)
	_, ok = <-late
	assert.False(t, ok)
	bus.Publish(context.Background(), model.Event{Type: model.EventTaskCreated})
}

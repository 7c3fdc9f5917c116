package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	var received []Event
	dispatcher.Subscribe(EventTicketClosed, func(_ context.Context, event Event) error {
		received = append(received, event)
		return nil
	})
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, _ Event) error {
		t.Fatal("handler for another event type must not fire")
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{
		Type:    EventTicketClosed,
		Payload: TicketClosedPayload{Folio: "FL040283", EvidenceCount: 2, Geotagged: true},
	})

	require.NoError(t, err)
	require.Len(t, received, 1)
	payload, ok := received[0].Payload.(TicketClosedPayload)
	require.True(t, ok)
	assert.Equal(t, "FL040283", payload.Folio)
}

func TestDispatcherHandlerErrorsDoNotAbort(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	var secondRan bool
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, _ Event) error {
		return errors.New("handler failure")
	})
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, _ Event) error {
		secondRan = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated})

	require.NoError(t, err)
	assert.True(t, secondRan)
}

// Package evbus configures the in-process event bus that carries canvas
// events from their producers (ping server, http api) to the consumers
// (canvas state, store, broker, webstream, nats).
package evbus

import (
	"context"

	"github.com/mustafaturan/bus/v3"
	"github.com/mustafaturan/monoton/v2"
	"github.com/mustafaturan/monoton/v2/sequencer"

	"nuha.dev/ipcanvas/internal/event"
)

func New() (*bus.Bus, error) {
	node := uint64(1)
	initialTime := uint64(1577865600000)
	m, err := monoton.New(sequencer.NewMillisecond(), node, initialTime)
	if err != nil {
		return nil, err
	}
	var idGenerator bus.Next = m.Next
	b, err := bus.NewBus(idGenerator)
	if err != nil {
		return nil, err
	}
	b.RegisterTopics(event.TopicPixel, event.TopicLabel)
	return b, nil
}

// Emit publishes the event on its topic.
func Emit(ctx context.Context, b *bus.Bus, e event.Event) error {
	topic := event.TopicPixel
	if _, ok := e.(event.PlaceLabel); ok {
		topic = event.TopicLabel
	}
	return b.Emit(ctx, topic, e)
}

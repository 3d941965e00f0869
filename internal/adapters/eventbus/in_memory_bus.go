package eventbus

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"MathBot/internal/core/ports"

	"github.com/rs/zerolog"
)

// Bus is an in-process pub/sub. Every handler runs on its own goroutine
// with a fresh context, so a slow notification never holds up the update
// loop that published it.
type Bus struct {
	log         zerolog.Logger
	subscribers map[string][]ports.EventHandler
	mu          sync.RWMutex
	inflight    sync.WaitGroup
}

var _ ports.EventBus = (*Bus)(nil) // Ensure compliance

// New creates an empty bus.
func New(baseLogger *zerolog.Logger) *Bus {
	return &Bus{
		log:         baseLogger.With().Str("component", "event_bus").Logger(),
		subscribers: make(map[string][]ports.EventHandler),
	}
}

// Publish hands the event to every subscriber of topic.
func (b *Bus) Publish(ctx context.Context, topic string, data interface{}) error {
	b.mu.RLock()
	handlers := slices.Clone(b.subscribers[topic])
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.log.Debug().Str("topic", topic).Msg("Published event with no subscribers")
		return nil
	}

	event := ports.Event{Topic: topic, Data: data}
	for _, handler := range handlers {
		b.inflight.Add(1)
		go b.dispatch(handler, event)
	}

	b.log.Debug().Str("topic", topic).Int("handlers", len(handlers)).Msg("Event published")
	return nil
}

func (b *Bus) dispatch(h ports.EventHandler, event ports.Event) {
	defer b.inflight.Done()
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Err(fmt.Errorf("panic: %v", r)).Str("topic", event.Topic).Msg("Event handler panicked")
		}
	}()

	// The publisher's context ends with its update; handlers outlive it.
	ctx := b.log.WithContext(context.Background())
	if err := h(ctx, event); err != nil {
		b.log.Error().Err(err).Str("topic", event.Topic).Msg("Event handler failed")
	}
}

// Subscribe registers a handler for a specific topic.
func (b *Bus) Subscribe(topic string, handler ports.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers[topic] = append(b.subscribers[topic], handler)
	b.log.Info().Str("topic", topic).Msg("New handler subscribed to topic")
}

// Wait blocks until every handler started so far has returned.
func (b *Bus) Wait() {
	b.inflight.Wait()
}

package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/alexisbeaulieu97/specdriver/internal/logger"
	"github.com/alexisbeaulieu97/specdriver/internal/ports"
)

// LoggingPublisher is the engine's side diagnostic channel: every published
// envelope is written as a structured log entry and fanned out synchronously
// to topic subscribers.
type LoggingPublisher struct {
	log    *logger.Logger
	subs   map[string][]subscriptionEntry
	nextID int
	mu     sync.RWMutex
}

// NewLoggingPublisher creates a publisher writing through the given logger.
func NewLoggingPublisher(log *logger.Logger) *LoggingPublisher {
	return &LoggingPublisher{
		log:  log,
		subs: map[string][]subscriptionEntry{},
	}
}

// Publish logs the envelope and delivers it to subscribers of its topic.
func (p *LoggingPublisher) Publish(ctx context.Context, env ports.Envelope) error {
	if p == nil {
		return nil
	}

	p.mu.RLock()
	handlers := append([]subscriptionEntry(nil), p.subs[env.Topic]...)
	p.mu.RUnlock()

	if p.log != nil {
		p.log.WithFields(map[string]any{
			"topic":   env.Topic,
			"payload": fmt.Sprintf("%v", env.Payload),
		}).Debug("diagnostic event")
	}

	for _, entry := range handlers {
		if entry.handler == nil {
			continue
		}
		if err := entry.handler(ctx, env); err != nil && p.log != nil {
			p.log.WithFields(map[string]any{"topic": env.Topic}).Error("event handler failed", err)
		}
	}
	return nil
}

// Subscribe registers a handler for the given topic.
func (p *LoggingPublisher) Subscribe(topic string, handler ports.Handler) (ports.Subscription, error) {
	if p == nil || handler == nil {
		return noopSubscription{}, nil
	}

	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.subs[topic] = append(p.subs[topic], subscriptionEntry{id: id, handler: handler})
	p.mu.Unlock()

	return subscription{cancel: func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		handlers := p.subs[topic]
		for i, entry := range handlers {
			if entry.id == id {
				p.subs[topic] = append(handlers[:i], handlers[i+1:]...)
				break
			}
		}
	}}, nil
}

type subscriptionEntry struct {
	id      int
	handler ports.Handler
}

type noopSubscription struct{}

func (noopSubscription) Unsubscribe() {}

type subscription struct {
	cancel func()
}

func (s subscription) Unsubscribe() {
	if s.cancel != nil {
		s.cancel()
	}
}

var _ ports.Publisher = (*LoggingPublisher)(nil)

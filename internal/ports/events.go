package ports

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// Envelope is one result/event message streamed to a consumer. The topic is
// derived from the payload's type so consumers can route without reflection.
type Envelope struct {
	Topic   string
	Payload any
}

// NewEnvelope wraps a payload with its derived topic.
func NewEnvelope(payload any) Envelope {
	return Envelope{Topic: TopicFor(payload), Payload: payload}
}

// TopicFor returns the lower-kebab-case form of the payload's type name,
// e.g. *result.SpecResults yields "spec-results".
func TopicFor(payload any) string {
	name := fmt.Sprintf("%T", payload)
	name = strings.TrimLeft(name, "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if i > 0 && (prevLower || nextLower) {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Queue is the one-way sink execution streams envelopes into. The engine
// never reads from it; implementations must be safe for concurrent use.
type Queue interface {
	Enqueue(env Envelope)
}

// Handler processes an envelope delivered through a publisher subscription.
type Handler func(ctx context.Context, env Envelope) error

// Publisher is the side diagnostic channel: synchronous fan-out of envelopes
// to subscribed handlers. Implementations must be thread-safe.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
	Subscribe(topic string, handler Handler) (Subscription, error)
}

// Subscription represents a registered handler. Unsubscribe stops delivery.
type Subscription interface {
	Unsubscribe()
}

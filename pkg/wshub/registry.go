package wshub

import (
	"context"
	"sync"

	"github.com/Zubra14/verista-tracking/internal/domain/types"
	"github.com/Zubra14/verista-tracking/pkg/logger"
	wrap "github.com/Zubra14/verista-tracking/pkg/logger/wrapper"
	"github.com/Zubra14/verista-tracking/pkg/uuid"
)

// Sender is the registry's handle to a subscriber connection. *Conn
// satisfies it; tests substitute fakes.
type Sender interface {
	ID() uuid.UUID
	Send(v any) error
}

// Registry maps topics to subscriber connections. It is an explicit
// object owned by whoever runs the hub, never ambient state: membership
// changes only through Subscribe and UnsubscribeAll, and disconnect
// cleanup is the single teardown path.
type Registry struct {
	mu     sync.RWMutex
	topics map[types.Topic]map[uuid.UUID]Sender
	byConn map[uuid.UUID]map[types.Topic]struct{}

	l logger.Logger
}

func NewRegistry(l logger.Logger) *Registry {
	return &Registry{
		topics: make(map[types.Topic]map[uuid.UUID]Sender),
		byConn: make(map[uuid.UUID]map[types.Topic]struct{}),
		l:      l,
	}
}

// Subscribe adds the connection to the topic and reports whether a new
// subscription was created. A connection may hold any number of
// subscriptions; duplicates are a no-op.
func (r *Registry) Subscribe(s Sender, topic types.Topic) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, ok := r.topics[topic]
	if !ok {
		subs = make(map[uuid.UUID]Sender)
		r.topics[topic] = subs
	}
	_, existed := subs[s.ID()]
	subs[s.ID()] = s

	owned, ok := r.byConn[s.ID()]
	if !ok {
		owned = make(map[types.Topic]struct{})
		r.byConn[s.ID()] = owned
	}
	owned[topic] = struct{}{}

	return !existed
}

// UnsubscribeAll removes every subscription owned by the connection and
// returns how many were removed. Called on disconnect; subscriptions
// never expire any other way.
func (r *Registry) UnsubscribeAll(connID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for topic := range r.byConn[connID] {
		if subs, ok := r.topics[topic]; ok {
			if _, had := subs[connID]; had {
				delete(subs, connID)
				removed++
			}
			if len(subs) == 0 {
				delete(r.topics, topic)
			}
		}
	}
	delete(r.byConn, connID)

	return removed
}

// SubscriberCount returns the number of connections on the topic.
func (r *Registry) SubscriberCount(topic types.Topic) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.topics[topic])
}

// Publish fans payload out to every subscriber of the topic, at most
// once each. Delivery failures are dropped, not retried: the next
// position sample supersedes this one anyway. Returns the number of
// successful deliveries.
func (r *Registry) Publish(ctx context.Context, topic types.Topic, payload any) int {
	// snapshot under read lock, send outside it
	r.mu.RLock()
	subs := make([]Sender, 0, len(r.topics[topic]))
	for _, s := range r.topics[topic] {
		subs = append(subs, s)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, s := range subs {
		if err := s.Send(payload); err != nil {
			r.l.Debug(wrap.WithAction(ctx, types.ActionBroadcastDropped),
				"dropped broadcast to subscriber",
				"topic", topic.String(),
				"conn_id", s.ID(),
				"err", err.Error(),
			)
			continue
		}
		delivered++
	}
	return delivered
}

package events

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

type event struct {
	kind string
	step uint64
	ts   time.Time
	data any
}

func (e event) Kind() string         { return e.kind }
func (e event) Step() uint64         { return e.step }
func (e event) Timestamp() time.Time { return e.ts }
func (e event) Data() any            { return e.data }

// NewEvent creates an Event stamped with the current time.
func NewEvent(kind string, step uint64, data any) Event {
	return event{kind: kind, step: step, ts: time.Now(), data: data}
}

type subscription struct {
	id      string
	kind    string
	handler Handler
}

// Bus is a thread-safe in-process pub/sub keyed by event kind.
type Bus struct {
	mu        sync.RWMutex
	handlers  map[string]map[string]*subscription
	index     map[string]string
	observers map[Observer]struct{}
	metrics   Metrics
}

func NewBus() *Bus {
	return &Bus{
		handlers:  make(map[string]map[string]*subscription),
		index:     make(map[string]string),
		observers: make(map[Observer]struct{}),
	}
}

// Subscribe registers handler for kind and returns the subscription id.
func (b *Bus) Subscribe(kind string, handler Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers[kind] == nil {
		b.handlers[kind] = make(map[string]*subscription)
	}
	id := uuid.NewString()
	b.handlers[kind][id] = &subscription{id: id, kind: kind, handler: handler}
	b.index[id] = kind
	return id
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	kind, ok := b.index[id]
	if !ok {
		return
	}
	delete(b.index, id)
	if m := b.handlers[kind]; m != nil {
		delete(m, id)
		if len(m) == 0 {
			delete(b.handlers, kind)
		}
	}
}

// Subscribers returns the number of handlers registered for kind.
func (b *Bus) Subscribers(kind string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[kind])
}

// Publish delivers event to every handler of its kind and joins their errors.
func (b *Bus) Publish(event Event) error {
	start := time.Now()
	kind := event.Kind()

	b.mu.RLock()
	var subs []*subscription
	if m := b.handlers[kind]; m != nil {
		subs = make([]*subscription, 0, len(m))
		for _, s := range m {
			subs = append(subs, s)
		}
	}
	observers := b.observersLocked()
	b.mu.RUnlock()

	for _, obs := range observers {
		obs.OnPublish(kind, event)
	}

	var all error
	for _, s := range subs {
		if err := s.handler(event); err != nil {
			all = errors.Join(all, err)
		}
	}

	if len(observers) > 0 {
		elapsed := time.Since(start)
		for _, obs := range observers {
			obs.OnDelivered(kind, len(subs), all, elapsed)
		}
		b.mu.Lock()
		b.metrics.Published++
		b.metrics.DeliveredHandlers += uint64(len(subs))
		if all != nil {
			b.metrics.Errors++
		}
		b.metrics.Subscribers = uint64(len(b.index))
		b.mu.Unlock()
	}
	return all
}

// PublishWithFilters drops the event without error when any filter rejects it.
func (b *Bus) PublishWithFilters(event Event, filters ...Filter) error {
	for _, f := range filters {
		if !f(event) {
			b.mu.Lock()
			if len(b.observers) > 0 {
				b.metrics.DroppedByFilters++
			}
			b.mu.Unlock()
			return nil
		}
	}
	return b.Publish(event)
}

// PublishBatch publishes events in order and joins errors across all of them.
func (b *Bus) PublishBatch(events ...Event) error {
	var all error
	for _, e := range events {
		if err := b.Publish(e); err != nil {
			all = errors.Join(all, err)
		}
	}
	return all
}

func (b *Bus) AddObserver(obs Observer) {
	b.mu.Lock()
	b.observers[obs] = struct{}{}
	b.mu.Unlock()
}

func (b *Bus) RemoveObserver(obs Observer) {
	b.mu.Lock()
	delete(b.observers, obs)
	b.mu.Unlock()
}

func (b *Bus) Metrics() Metrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metrics
}

func (b *Bus) observersLocked() []Observer {
	if len(b.observers) == 0 {
		return nil
	}
	out := make([]Observer, 0, len(b.observers))
	for obs := range b.observers {
		out = append(out, obs)
	}
	return out
}

// Package events carries step results out of the physics world to game code.
//
// The bus is synchronous: Publish runs every handler of the event kind in the
// caller goroutine and joins their errors. The simulation publishes once per
// step, after the world has finished its collision passes, so handlers may
// resolve handles and touch bodies freely.
package events

import "time"

// Event kinds published by the simulation.
const (
	KindSensorContact = "sensor.contact"
	KindLevelWall     = "level.wall"
	KindPoolExhausted = "pool.exhausted"
)

// Event is an immutable message delivered by the Bus.
type Event interface {
	// Kind is the routing key handlers subscribe to.
	Kind() string
	// Step is the world step the event was produced in.
	Step() uint64
	Timestamp() time.Time
	// Data is the payload, one of the physics result types for the built-in kinds.
	Data() any
}

type (
	// Handler is invoked once per delivered event.
	Handler func(event Event) error
	// Filter drops an event before delivery when it returns false.
	Filter func(event Event) bool
)

// Observer is notified around every delivery. Observers should return quickly.
type Observer interface {
	OnPublish(kind string, event Event)
	OnDelivered(kind string, handlers int, err error, elapsed time.Duration)
}

// Metrics are only collected while at least one observer is registered.
type Metrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	DroppedByFilters  uint64
	Subscribers       uint64
}

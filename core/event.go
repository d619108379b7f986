// Package core provides the fundamental building blocks of querykit.
// This file defines the events emitted after inserts and searches.
package core

import "sync"

// Event represents a lifecycle event emitted after an operation succeeds.
type Event string

const (
	// EventInsert is emitted after records are inserted.
	EventInsert Event = "insert"
	// EventFind is emitted after a search returned its page.
	EventFind Event = "find"
)

// EventHandler defines the callback signature for event listeners.
// The payload is an InsertPayload or a FindManyPayload.
type EventHandler func(payload any)

// EventDispatcher manages a list of event handlers and dispatches them
// when the corresponding events are emitted.
type EventDispatcher struct {
	mutex       sync.RWMutex
	handlerList map[Event][]EventHandler
}

// NewEventDispatcher returns an empty dispatcher.
func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{handlerList: make(map[Event][]EventHandler)}
}

// On registers an EventHandler for a specific Event.
func (d *EventDispatcher) On(event Event, handler EventHandler) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.handlerList[event] = append(d.handlerList[event], handler)
}

// Emit triggers all registered handlers for the given Event.
//
// Handlers are executed asynchronously in separate goroutines.
func (d *EventDispatcher) Emit(event Event, payload any) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	for _, h := range d.handlerList[event] {
		go h(payload)
	}
}

// globalDispatcher is the shared dispatcher behind On and Emit.
var globalDispatcher = NewEventDispatcher()

// On registers an EventHandler on the shared dispatcher.
//
// Example:
//
//	core.On(core.EventFind, func(payload any) {
//	    if p, ok := payload.(core.FindManyPayload); ok {
//	        slog.Info("search served", "collection", p.Schema.Collection, "rows", len(p.Records))
//	    }
//	})
func On(event Event, handler EventHandler) {
	globalDispatcher.On(event, handler)
}

// Emit triggers the handlers registered on the shared dispatcher.
func Emit(event Event, payload any) {
	globalDispatcher.Emit(event, payload)
}

// InsertPayload represents the payload passed to EventInsert handlers.
type InsertPayload struct {
	Schema  *SchemaCore
	Records []Record
}

// FindManyPayload represents the payload passed to EventFind handlers.
//
// Records is the page returned to the caller, without the look-ahead row.
type FindManyPayload struct {
	Schema     *SchemaCore
	Descriptor *Descriptor
	Records    []Record
}

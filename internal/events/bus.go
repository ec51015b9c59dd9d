// Package events provides a small typed publish/subscribe bus. State owners
// publish change events and views subscribe to the event types they care
// about, instead of watching each other's fields.
package events

import "sync"

// topic is the map key for an event type. Each instantiation is a distinct
// comparable type, so topic[A]{} and topic[B]{} never collide.
type topic[E any] struct{}

type subscription struct {
	id int
	fn any
}

// Bus routes events to subscribers by the event's Go type.
// The zero value is ready to use. A nil *Bus drops every publish.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[any][]subscription
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers fn for events of type E and returns a function that
// removes the subscription. Handlers run synchronously, in subscription order,
// on the publisher's goroutine.
func Subscribe[E any](b *Bus, fn func(E)) (unsubscribe func()) {
	if b == nil || fn == nil {
		return func() {}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = make(map[any][]subscription)
	}
	b.nextID++
	id := b.nextID
	key := topic[E]{}
	b.subs[key] = append(b.subs[key], subscription{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[key]
		for i, s := range list {
			if s.id == id {
				b.subs[key] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers e to every subscriber of E.
func Publish[E any](b *Bus, e E) {
	if b == nil {
		return
	}
	b.mu.Lock()
	list := append([]subscription(nil), b.subs[topic[E]{}]...)
	b.mu.Unlock()

	// Handlers may publish or subscribe themselves, so the lock is not held here.
	for _, s := range list {
		s.fn.(func(E))(e)
	}
}

// Subscribers reports how many handlers are registered for E.
func Subscribers[E any](b *Bus) int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic[E]{}])
}

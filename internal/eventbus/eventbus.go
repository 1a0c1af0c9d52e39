// Package eventbus provides a small typed publish/subscribe bus.
//
// A Bus is an owned object that is handed to both emitters and listeners,
// so there is no process-wide registry of handlers.
package eventbus

import "sync"

// Handler receives a published event.
type Handler[T any] func(T)

type subscription[T any] struct {
	id      uint64
	handler Handler[T]
}

// Bus delivers events of type T to its subscribers in subscription order.
type Bus[T any] struct {
	mu     sync.RWMutex
	subs   []subscription[T]
	nextID uint64
}

// New creates an empty bus.
func New[T any]() *Bus[T] {
	return &Bus[T]{}
}

// Subscribe registers h and returns a function that removes it.
// Calling the returned function more than once is harmless.
func (b *Bus[T]) Subscribe(h Handler[T]) func() {
	if h == nil {
		return func() {}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription[T]{id: id, handler: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus[T]) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish calls every subscriber synchronously with ev.
// Handlers may subscribe or unsubscribe while an event is being delivered;
// such changes take effect from the next Publish.
func (b *Bus[T]) Publish(ev T) {
	b.mu.RLock()
	snapshot := make([]Handler[T], len(b.subs))
	for i, s := range b.subs {
		snapshot[i] = s.handler
	}
	b.mu.RUnlock()

	for _, h := range snapshot {
		h(ev)
	}
}

// Count returns the number of active subscribers.
func (b *Bus[T]) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

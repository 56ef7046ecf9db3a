package editor

import "slices"

// Subscription cancels a listener registration.
type Subscription struct {
	cancel func()
}

// Unsubscribe removes the listener. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
}

type listener[T any] struct {
	id int
	fn func(T)
}

// Signal is a multicast notification without memory: listeners only see
// values emitted after they subscribed.
type Signal[T any] struct {
	next      int
	listeners []listener[T]
}

func (s *Signal[T]) Subscribe(fn func(T)) *Subscription {
	s.next++
	id := s.next
	s.listeners = append(s.listeners, listener[T]{id: id, fn: fn})
	return &Subscription{cancel: func() { s.remove(id) }}
}

// SubscribeOnce delivers the next value to fn and then cancels itself.
func (s *Signal[T]) SubscribeOnce(fn func(T)) *Subscription {
	var sub *Subscription
	sub = s.Subscribe(func(v T) {
		sub.Unsubscribe()
		fn(v)
	})
	return sub
}

func (s *Signal[T]) Emit(v T) {
	for _, l := range slices.Clone(s.listeners) {
		if s.has(l.id) {
			l.fn(v)
		}
	}
}

func (s *Signal[T]) Len() int { return len(s.listeners) }

// Close drops every listener.
func (s *Signal[T]) Close() { s.listeners = nil }

func (s *Signal[T]) remove(id int) {
	s.listeners = slices.DeleteFunc(s.listeners, func(l listener[T]) bool { return l.id == id })
}

func (s *Signal[T]) has(id int) bool {
	return slices.ContainsFunc(s.listeners, func(l listener[T]) bool { return l.id == id })
}

// Subject holds a current value and replays it to every new subscriber
// before delivering later values.
type Subject[T any] struct {
	value  T
	signal Signal[T]
}

func NewSubject[T any](initial T) *Subject[T] {
	return &Subject[T]{value: initial}
}

func (s *Subject[T]) Value() T { return s.value }

func (s *Subject[T]) Next(v T) {
	s.value = v
	s.signal.Emit(v)
}

func (s *Subject[T]) Subscribe(fn func(T)) *Subscription {
	sub := s.signal.Subscribe(fn)
	fn(s.value)
	return sub
}

func (s *Subject[T]) Len() int { return s.signal.Len() }

func (s *Subject[T]) Close() { s.signal.Close() }

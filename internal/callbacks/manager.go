package callbacks

import (
	"sync"
)

// Callback fans one message out to every subscriber. A subscriber
// returning false is removed.
type Callback[V any] struct {
	callbacks sync.Map
}

func New[V any]() *Callback[V] {
	return &Callback[V]{
		callbacks: sync.Map{},
	}
}

func (p *Callback[V]) Broadcast(msg V) {
	p.callbacks.Range(func(key, value any) bool {
		if fn, ok := value.(func(msg V) bool); ok {
			go func() {
				if !fn(msg) {
					p.callbacks.Delete(key)
				}
			}()
		}

		return true
	})
}

func (p *Callback[V]) SubscribeNamed(name string, fn func(msg V) bool) {
	p.callbacks.Store(name, fn)
}

func (p *Callback[V]) Unsubscribe(name string) bool {
	_, found := p.callbacks.LoadAndDelete(name)

	return found
}

package util

import "sync"

type Keyed interface {
	Key() string
}

func NewHolder[T Keyed]() *Holder[T] {
	return &Holder[T]{
		data: sync.Map{},
	}
}

type Holder[T Keyed] struct {
	data sync.Map
}

func (h *Holder[T]) Get(key string) (T, bool) {
	if v, ok := h.data.Load(key); ok {
		if n, ok1 := v.(T); ok1 {
			return n, true
		}
	}

	var zero T

	return zero, false
}

func (h *Holder[T]) Add(c T) {
	h.data.Store(c.Key(), c)
}

func (h *Holder[T]) Remove(key string) {
	h.data.Delete(key)
}

func (h *Holder[T]) RemoveExec(key string, f func(c T)) {
	if v, ok := h.data.LoadAndDelete(key); ok {
		if c, ok1 := v.(T); ok1 {
			f(c)
		}
	}
}

func (h *Holder[T]) All(f func(c T) bool) {
	h.data.Range(func(_, value any) bool {
		if c, ok := value.(T); ok {
			return f(c)
		}

		return true
	})
}

func (h *Holder[T]) Len() int {
	n := 0

	h.data.Range(func(_, _ any) bool {
		n++

		return true
	})

	return n
}

func (h *Holder[T]) Clear() {
	h.data.Range(func(key, _ any) bool {
		h.data.Delete(key)

		return true
	})
}

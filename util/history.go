package util

import "github.com/samber/mo"

// History records the screens a frontend moved through so "back" can
// retrace them. Consecutive duplicates collapse into one entry and, when
// Limit is positive, the oldest entries fall off past that depth.
type History[T comparable] struct {
	Limit int

	items []T
}

// Push remembers item as the most recent screen.
func (h *History[T]) Push(item T) {
	if n := len(h.items); n > 0 && h.items[n-1] == item {
		return
	}

	h.items = append(h.items, item)
	if h.Limit > 0 && len(h.items) > h.Limit {
		h.items = h.items[len(h.items)-h.Limit:]
	}
}

// Pop forgets and returns the most recent screen.
func (h *History[T]) Pop() mo.Option[T] {
	n := len(h.items)
	if n == 0 {
		return mo.None[T]()
	}

	item := h.items[n-1]
	h.items = h.items[:n-1]
	return mo.Some(item)
}

// Back pops the most recent screen, or returns fallback when there is none.
func (h *History[T]) Back(fallback T) T {
	return h.Pop().OrElse(fallback)
}

func (h *History[T]) Len() int {
	return len(h.items)
}

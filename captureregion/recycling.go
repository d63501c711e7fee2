package captureregion

// recyclingList is a growable list whose elements are allocated once and reused after Clear.
// Pointers returned by Add stay valid until the list is cleared.
type recyclingList[T any] struct {
	items   []*T
	size    int
	newItem func() *T
	reset   func(*T)
}

func newRecyclingList[T any](newItem func() *T, reset func(*T)) *recyclingList[T] {
	return &recyclingList[T]{newItem: newItem, reset: reset}
}

// Add returns the next element, reset.
func (l *recyclingList[T]) Add() *T {
	if l.size == len(l.items) {
		l.items = append(l.items, l.newItem())
	}
	item := l.items[l.size]
	l.reset(item)
	l.size++
	return item
}

func (l *recyclingList[T]) Get(i int) *T {
	if i < 0 || i >= l.size {
		return nil
	}
	return l.items[i]
}

func (l *recyclingList[T]) Len() int {
	return l.size
}

// Clear empties the list without releasing its elements.
func (l *recyclingList[T]) Clear() {
	l.size = 0
}

// View returns the live elements. The slice is invalidated by Add and Clear.
func (l *recyclingList[T]) View() []*T {
	return l.items[:l.size]
}

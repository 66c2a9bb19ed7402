package luasync

import "sort"

type lesser[E any] interface {
	less(v E) bool
}

// A runqueue is a priority queue with FIFO ordering among equal elements.
// Elements are kept sorted in a single slice; popped slots at the front are
// reclaimed lazily once they outnumber the live elements.
type runqueue[E lesser[E]] struct {
	s    []E
	head int
}

func (q *runqueue[E]) Empty() bool {
	return q.head == len(q.s)
}

func (q *runqueue[E]) Len() int {
	return len(q.s) - q.head
}

func (q *runqueue[E]) Push(v E) {
	live := q.s[q.head:]

	// First element greater than v; inserting there keeps arrival order
	// among elements that compare equal.
	i := q.head + sort.Search(len(live), func(i int) bool {
		return v.less(live[i])
	})

	q.s = append(q.s, v)
	copy(q.s[i+1:], q.s[i:])
	q.s[i] = v
}

func (q *runqueue[E]) Pop() (v E) {
	var zero E

	v, q.s[q.head] = q.s[q.head], zero
	q.head++

	if q.head > len(q.s)-q.head {
		n := copy(q.s, q.s[q.head:])
		clear(q.s[n:])
		q.s = q.s[:n]
		q.head = 0
	}

	return v
}

package allocation

import "container/heap"

// queue is a binary heap ordered by less. Items are values: pushing a
// recipient with updated capacity re-orders it against the untouched ones.
type queue[T any] struct {
	items []T
	less  func(a, b T) bool
}

func newQueue[T any](items []T, less func(a, b T) bool) *queue[T] {
	q := &queue[T]{items: items, less: less}
	heap.Init(q)
	return q
}

func (q *queue[T]) Len() int           { return len(q.items) }
func (q *queue[T]) Less(i, j int) bool { return q.less(q.items[i], q.items[j]) }
func (q *queue[T]) Swap(i, j int)      { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *queue[T]) Push(x any) { q.items = append(q.items, x.(T)) }

func (q *queue[T]) Pop() any {
	n := len(q.items)
	it := q.items[n-1]
	var zero T
	q.items[n-1] = zero
	q.items = q.items[:n-1]
	return it
}

func (q *queue[T]) push(v T) { heap.Push(q, v) }
func (q *queue[T]) pop() T   { return heap.Pop(q).(T) }

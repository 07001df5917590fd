package sequence

const minQueueCapacity = 16

// Queue is a FIFO ring buffer. The zero value is ready to use.
// It is not safe for concurrent use.
type Queue[T any] struct {
	items []T
	head  int
	count int
}

func NewQueue[T any](capacity int) *Queue[T] {
	if capacity < minQueueCapacity {
		capacity = minQueueCapacity
	}
	return &Queue[T]{items: make([]T, capacity)}
}

// Enqueue appends value at the tail.
func (q *Queue[T]) Enqueue(value T) {
	if q.count == len(q.items) {
		q.grow()
	}
	q.items[(q.head+q.count)%len(q.items)] = value
	q.count++
}

// Dequeue removes and returns the head value.
func (q *Queue[T]) Dequeue() (T, bool) {
	var zero T
	if q.count == 0 {
		return zero, false
	}
	value := q.items[q.head]
	q.items[q.head] = zero // release reference
	q.head = (q.head + 1) % len(q.items)
	q.count--
	return value, true
}

func (q *Queue[T]) Peek() (T, bool) {
	if q.count == 0 {
		var zero T
		return zero, false
	}
	return q.items[q.head], true
}

func (q *Queue[T]) Len() int {
	return q.count
}

func (q *Queue[T]) IsEmpty() bool {
	return q.count == 0
}

// Clear drops every queued value and keeps the buffer.
func (q *Queue[T]) Clear() {
	var zero T
	for i := 0; i < q.count; i++ {
		q.items[(q.head+i)%len(q.items)] = zero
	}
	q.head = 0
	q.count = 0
}

func (q *Queue[T]) grow() {
	size := len(q.items) * 2
	if size < minQueueCapacity {
		size = minQueueCapacity
	}
	items := make([]T, size)
	for i := 0; i < q.count; i++ {
		items[i] = q.items[(q.head+i)%len(q.items)]
	}
	q.items = items
	q.head = 0
}

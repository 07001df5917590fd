package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue[int](0)
	for i := 0; i < 5; i++ {
		q.Enqueue(i)
	}
	require.Equal(t, 5, q.Len())

	head, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, 0, head)

	for i := 0; i < 5; i++ {
		v, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok = q.Dequeue()
	assert.False(t, ok)
	assert.True(t, q.IsEmpty())
}

func TestQueueGrowsAcrossWrap(t *testing.T) {
	var q Queue[int]
	for i := 0; i < 10; i++ {
		q.Enqueue(i)
	}
	for i := 0; i < 7; i++ {
		_, _ = q.Dequeue()
	}
	// head sits in the middle of the ring; growing must keep order
	for i := 10; i < 40; i++ {
		q.Enqueue(i)
	}
	for want := 7; want < 40; want++ {
		v, ok := q.Dequeue()
		require.True(t, ok)
		require.Equal(t, want, v)
	}
}

func TestQueueClear(t *testing.T) {
	q := NewQueue[string](4)
	q.Enqueue("a")
	q.Enqueue("b")
	q.Clear()
	assert.Equal(t, 0, q.Len())
	q.Enqueue("c")
	v, _ := q.Dequeue()
	assert.Equal(t, "c", v)
}

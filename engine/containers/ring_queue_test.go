package containers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/cadscene/engine/containers"
)

func TestRingQueue_FIFOAndWrap(t *testing.T) {
	q := containers.NewRingQueue[string](2)
	assert.True(t, q.IsEmpty())

	require.NoError(t, q.Enqueue("a"))
	require.NoError(t, q.Enqueue("b"))
	assert.True(t, q.IsFull())
	assert.ErrorIs(t, q.Enqueue("c"), containers.ErrQueueFull)

	v, err := q.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	require.NoError(t, q.Enqueue("c"))
	assert.True(t, q.Contains("c"))
	assert.False(t, q.Contains("a"))

	head, err := q.Peek()
	require.NoError(t, err)
	assert.Equal(t, "b", head)

	for _, want := range []string{"b", "c"} {
		v, err := q.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}
	_, err = q.Dequeue()
	assert.ErrorIs(t, err, containers.ErrQueueEmpty)
	_, err = q.Peek()
	assert.ErrorIs(t, err, containers.ErrQueueEmpty)
	assert.Zero(t, q.Len())
}

package ring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuffer_PushPopFIFO(t *testing.T) {
	b := New[int](4)
	require.True(t, b.Empty())
	require.False(t, b.Full())

	for i := 1; i <= 4; i++ {
		require.True(t, b.PushBack(i))
	}
	require.True(t, b.Full())
	require.False(t, b.PushBack(5))

	for i := 1; i <= 4; i++ {
		v, ok := b.PopFront()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	require.True(t, b.Empty())
	_, ok := b.PopFront()
	require.False(t, ok)
}

func TestBuffer_WrapAround(t *testing.T) {
	b := New[int](4)
	for i := 0; i < 3; i++ {
		require.True(t, b.PushBack(i))
	}
	v, _ := b.PopFront()
	require.Equal(t, 0, v)
	v, _ = b.PopFront()
	require.Equal(t, 1, v)

	// Wraps past the end of the backing slice.
	require.True(t, b.PushBack(10))
	require.True(t, b.PushBack(11))
	require.True(t, b.PushBack(12))
	require.True(t, b.Full())

	want := []int{2, 10, 11, 12}
	for _, w := range want {
		v, ok := b.PopFront()
		require.True(t, ok)
		require.Equal(t, w, v)
	}
}

func TestBuffer_PeekFrontDoesNotRemove(t *testing.T) {
	b := New[string](2)
	b.PushBack("a")
	v, ok := b.PeekFront()
	require.True(t, ok)
	require.Equal(t, "a", v)
	require.Equal(t, 1, b.Len())
}

func TestNew_PanicsOnNonPowerOfTwo(t *testing.T) {
	require.Panics(t, func() { New[int](3) })
	require.Panics(t, func() { New[int](0) })
}

func TestBuffer_GrowPreservesOrderAfterWrap(t *testing.T) {
	b := New[int](4)
	for i := 0; i < 3; i++ {
		require.True(t, b.PushBack(i))
	}
	v, _ := b.PopFront()
	require.Equal(t, 0, v)

	// Wrap the backing slice before growing.
	require.True(t, b.PushBack(10))
	require.True(t, b.PushBack(11))
	require.True(t, b.Full())

	b.Grow()
	require.Equal(t, 8, b.Cap())
	require.Equal(t, 4, b.Len())
	require.False(t, b.Full())

	require.True(t, b.PushBack(12))
	require.True(t, b.PushBack(13))
	require.True(t, b.PushBack(14))

	want := []int{1, 2, 10, 11, 12, 13, 14}
	for _, w := range want {
		v, ok := b.PopFront()
		require.True(t, ok)
		require.Equal(t, w, v)
	}
	require.True(t, b.Empty())
}

package gochan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedRingWrapsAround(t *testing.T) {
	r := newFixedRing[int](3)
	assert.True(t, r.Push(1))
	assert.True(t, r.Push(2))
	assert.True(t, r.Push(3))
	assert.True(t, r.Full())
	assert.False(t, r.Push(4), "fixed ring rejects pushes when full")

	v, ok := r.Pop()
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.True(t, r.Push(4))

	var got []int
	for {
		v, ok := r.Pop()
		if !ok {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []int{2, 3, 4}, got)
	assert.Equal(t, 0, r.Len())
}

func TestGrowableRingGrowsAndShrinks(t *testing.T) {
	r := newGrowableRing[int]()
	for i := 0; i < 100; i++ {
		require.True(t, r.Push(i))
	}
	assert.False(t, r.Full())
	assert.Equal(t, 100, r.Len())
	assert.GreaterOrEqual(t, len(r.items), 100)

	for i := 0; i < 95; i++ {
		v, ok := r.Pop()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	assert.Less(t, len(r.items), 100, "ring shrinks once mostly empty")
	for i := 95; i < 100; i++ {
		v, ok := r.Pop()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok := r.Pop()
	assert.False(t, ok)
	assert.Equal(t, minRingSize, len(r.items))
}

func TestGrowableRingKeepsOrderAcrossResize(t *testing.T) {
	r := newGrowableRing[int]()
	// move head away from index 0 before growing
	for i := 0; i < 6; i++ {
		r.Push(i)
	}
	for i := 0; i < 4; i++ {
		r.Pop()
	}
	for i := 6; i < 30; i++ {
		r.Push(i)
	}
	for want := 4; want < 30; want++ {
		v, ok := r.Pop()
		require.True(t, ok)
		assert.Equal(t, want, v)
	}
}

func TestRingClear(t *testing.T) {
	r := newGrowableRing[*int]()
	for i := 0; i < 20; i++ {
		v := i
		r.Push(&v)
	}
	assert.Equal(t, 20, r.Clear())
	assert.Equal(t, 0, r.Len())
	for _, item := range r.items {
		assert.Nil(t, item, "cleared slots do not pin values")
	}

	f := newFixedRing[int](2)
	f.Push(1)
	assert.Equal(t, 1, f.Clear())
	assert.True(t, f.Push(2))
	assert.True(t, f.Push(3))
}

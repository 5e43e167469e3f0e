package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoveBufferKeepsInsertionOrder(t *testing.T) {
	t.Parallel()

	var buf MoveBuffer
	for i := Size*Size - 1; i >= 0; i-- {
		buf.Push(Move{Row: i / Size, Col: i % Size})
	}
	assert.Equal(t, Size*Size, buf.Len())
	assert.Equal(t, Move{Row: 7, Col: 7}, buf.At(0))
	assert.Equal(t, Move{Row: 0, Col: 0}, buf.At(buf.Len()-1))
	assert.True(t, buf.Contains(Move{Row: 3, Col: 4}))

	buf.Reset()
	assert.Zero(t, buf.Len())
	assert.Empty(t, buf.Moves())
	assert.False(t, buf.Contains(Move{Row: 3, Col: 4}))
	assert.Panics(t, func() { buf.At(0) })
}

func TestMoveBufferPanicsWhenFull(t *testing.T) {
	t.Parallel()

	var buf MoveBuffer
	for i := 0; i < Size*Size; i++ {
		buf.Push(NoMove)
	}
	assert.Panics(t, func() { buf.Push(NoMove) })
}

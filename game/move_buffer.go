package game

// MoveBuffer is a fixed-capacity list of moves kept in insertion order. It is
// meant to be reused between calls so hot paths do not allocate.
type MoveBuffer struct {
	list  [Size * Size]Move
	count int
}

func (b *MoveBuffer) Reset() {
	b.count = 0
}

// Push appends m. Pushing past capacity panics.
func (b *MoveBuffer) Push(m Move) {
	b.list[b.count] = m
	b.count++
}

func (b *MoveBuffer) Len() int {
	return b.count
}

// At returns the i-th move. Indices at or beyond Len panic.
func (b *MoveBuffer) At(i int) Move {
	if i >= b.count {
		panic("game: move buffer index out of range")
	}
	return b.list[i]
}

// Moves returns a view of the stored moves. The slice aliases the buffer and is
// only valid until the next Reset or Push.
func (b *MoveBuffer) Moves() []Move {
	return b.list[:b.count:b.count]
}

func (b *MoveBuffer) Contains(m Move) bool {
	for _, mv := range b.list[:b.count] {
		if mv == m {
			return true
		}
	}
	return false
}

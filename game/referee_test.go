package game

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mv(row, col int) Move {
	return Move{Row: row, Col: col}
}

func emptyBoard() Board {
	return Board{}
}

// fillBoard sets every cell, rows 0-3 to top and rows 4-7 to bottom.
func fillBoard(top, bottom Player) Board {
	var b Board
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if row < Size/2 {
				b.Grid[row][col] = Taken(top)
			} else {
				b.Grid[row][col] = Taken(bottom)
			}
		}
	}
	return b
}

func TestNewBoardHasFourCenterDisks(t *testing.T) {
	t.Parallel()

	b := NewBoard()
	taken := 0
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if b.Grid[row][col].Taken {
				taken++
			}
		}
	}
	assert.Equal(t, 4, taken)
	assert.Equal(t, Taken(White), b.Cell(mv(3, 3)))
	assert.Equal(t, Taken(White), b.Cell(mv(4, 4)))
	assert.Equal(t, Taken(Black), b.Cell(mv(3, 4)))
	assert.Equal(t, Taken(Black), b.Cell(mv(4, 3)))

	r := NewReferee()
	black, white := r.CountDisks(&b, Black)
	assert.Equal(t, 2, black)
	assert.Equal(t, 2, white)
}

func TestFindFlipCellsInitialBoard(t *testing.T) {
	t.Parallel()

	b := NewBoard()
	r := NewReferee()
	var flips MoveBuffer

	require.True(t, r.FindFlipCellsForMove(&b, Black, mv(2, 3), &flips))
	assert.Equal(t, []Move{mv(3, 3)}, flips.Moves())

	assert.False(t, r.FindFlipCellsForMove(&b, Black, mv(2, 2), &flips))
	assert.Zero(t, flips.Len())
	assert.False(t, r.ValidateMove(&b, Black, mv(2, 2)))
}

func TestFindFlipCellsDoesNotMutateBoard(t *testing.T) {
	t.Parallel()

	b := NewBoard()
	before := b
	r := NewReferee()
	var flips MoveBuffer
	r.FindFlipCellsForMove(&b, Black, mv(2, 3), &flips)
	assert.Equal(t, before, b)
}

func TestTakenCellIsNeverLegal(t *testing.T) {
	t.Parallel()

	b := NewBoard()
	r := NewReferee()
	for _, m := range []Move{mv(3, 3), mv(3, 4), mv(4, 3), mv(4, 4)} {
		assert.False(t, r.ValidateMove(&b, Black, m), "move %s", m)
		assert.False(t, r.ValidateMove(&b, White, m), "move %s", m)
	}
}

func TestValidateMoveRejectsOffBoard(t *testing.T) {
	t.Parallel()

	b := NewBoard()
	r := NewReferee()
	assert.False(t, r.ValidateMove(&b, Black, NoMove))
	assert.False(t, r.ValidateMove(&b, Black, mv(-1, 0)))
}

func TestFindAllValidMovesInitialBoard(t *testing.T) {
	t.Parallel()

	b := NewBoard()
	r := NewReferee()
	var moves MoveBuffer

	require.True(t, r.FindAllValidMoves(&b, Black, &moves))
	assert.Equal(t, []Move{mv(2, 3), mv(3, 2), mv(4, 5), mv(5, 4)}, moves.Moves())

	require.True(t, r.FindAllValidMoves(&b, White, &moves))
	assert.Equal(t, []Move{mv(2, 4), mv(3, 5), mv(4, 2), mv(5, 3)}, moves.Moves())
}

func TestFindAllValidMovesIsIdempotent(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	r := NewReferee()
	for i := 0; i < 50; i++ {
		b := randomBoard(rng)
		var first, second MoveBuffer
		okFirst := r.FindAllValidMoves(&b, White, &first)
		okSecond := r.FindAllValidMoves(&b, White, &second)
		assert.Equal(t, okFirst, okSecond)
		assert.Equal(t, first.Moves(), second.Moves())
	}
}

func TestFlipOrderAcrossRays(t *testing.T) {
	t.Parallel()

	b := emptyBoard()
	b.Grid[0][1] = Taken(White)
	b.Grid[0][2] = Taken(White)
	b.Grid[0][3] = Taken(Black)
	b.Grid[1][0] = Taken(White)
	b.Grid[2][0] = Taken(Black)

	r := NewReferee()
	var flips MoveBuffer
	require.True(t, r.FindFlipCellsForMove(&b, Black, mv(0, 0), &flips))
	// Rays follow the neighbourhood scan; each ray lists its farthest cell first.
	assert.Equal(t, []Move{mv(0, 2), mv(0, 1), mv(1, 0)}, flips.Moves())
}

func TestRayStopsAtEdge(t *testing.T) {
	t.Parallel()

	b := emptyBoard()
	for col := 1; col < Size; col++ {
		b.Grid[0][col] = Taken(White)
	}
	r := NewReferee()
	assert.False(t, r.ValidateMove(&b, Black, mv(0, 0)))
}

func TestRayStopsAtEmptyCell(t *testing.T) {
	t.Parallel()

	b := emptyBoard()
	b.Grid[7][6] = Taken(White)
	b.Grid[7][4] = Taken(Black)
	r := NewReferee()
	assert.False(t, r.ValidateMove(&b, Black, mv(7, 7)))
}

func TestApplyMoveFlipsCapturedDisks(t *testing.T) {
	t.Parallel()

	b := NewBoard()
	r := NewReferee()
	var flips MoveBuffer
	require.True(t, r.FindFlipCellsForMove(&b, Black, mv(2, 3), &flips))
	r.ApplyMove(&b, Black, mv(2, 3), &flips)

	assert.Equal(t, Taken(Black), b.Cell(mv(2, 3)))
	assert.Equal(t, Taken(Black), b.Cell(mv(3, 3)))
	black, white := r.CountDisks(&b, Black)
	assert.Equal(t, 4, black)
	assert.Equal(t, 1, white)

	// The played cell is taken now, so the same move cannot be replayed.
	assert.False(t, r.FindFlipCellsForMove(&b, Black, mv(2, 3), &flips))
	assert.False(t, r.FindFlipCellsForMove(&b, White, mv(2, 3), &flips))
}

func TestCheckOutcome(t *testing.T) {
	t.Parallel()

	r := NewReferee()

	tie := fillBoard(Black, White)
	var moves MoveBuffer
	require.False(t, r.FindAllValidMoves(&tie, Black, &moves))
	require.False(t, r.FindAllValidMoves(&tie, White, &moves))
	assert.Equal(t, Tie(), r.CheckOutcome(&tie))

	won := fillBoard(Black, White)
	won.Grid[4][0] = Taken(Black)
	black, white := r.CountDisks(&won, Black)
	require.Equal(t, 33, black)
	require.Equal(t, 31, white)
	assert.Equal(t, Won(Black), r.CheckOutcome(&won))
	assert.True(t, r.CheckOutcome(&won).WonBy(Black))

	whiteWins := fillBoard(White, Black)
	whiteWins.Grid[4][0] = Taken(White)
	assert.Equal(t, Won(White), r.CheckOutcome(&whiteWins))
}

var directions = [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}

// oracleFlips is a direct eight-direction scan used to cross-check the referee.
func oracleFlips(b *Board, player Player, m Move) []Move {
	if b.Grid[m.Row][m.Col].Taken {
		return nil
	}
	var flips []Move
	for _, d := range directions {
		var run []Move
		row, col := m.Row+d[0], m.Col+d[1]
		for row >= 0 && row < Size && col >= 0 && col < Size {
			c := b.Grid[row][col]
			if !c.Taken {
				run = nil
				break
			}
			if c.Owner == player {
				flips = append(flips, run...)
				break
			}
			run = append(run, mv(row, col))
			row += d[0]
			col += d[1]
		}
	}
	return flips
}

func randomBoard(rng *rand.Rand) Board {
	var b Board
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			switch rng.Intn(3) {
			case 1:
				b.Grid[row][col] = Taken(Black)
			case 2:
				b.Grid[row][col] = Taken(White)
			}
		}
	}
	return b
}

func sortMoves(moves []Move) []Move {
	out := append([]Move(nil), moves...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

func TestLegalityMatchesDirectionScan(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	r := NewReferee()
	var flips MoveBuffer
	for i := 0; i < 200; i++ {
		b := randomBoard(rng)
		for _, player := range []Player{Black, White} {
			for row := 0; row < Size; row++ {
				for col := 0; col < Size; col++ {
					m := mv(row, col)
					want := oracleFlips(&b, player, m)
					got := r.FindFlipCellsForMove(&b, player, m, &flips)
					require.Equal(t, len(want) > 0, got, "board %d player %s move %s\n%s", i, player, m, b.String())
					require.Equal(t, got, r.ValidateMove(&b, player, m))
					if got {
						assert.Equal(t, sortMoves(want), sortMoves(flips.Moves()))
					}
				}
			}
		}
	}
}

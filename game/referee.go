package game

// Referee answers rule questions about a board. It keeps scratch buffers
// between calls, so every goroutine needs its own Referee.
type Referee struct {
	adjacentOpposites MoveBuffer
	flipCells         MoveBuffer
}

func NewReferee() *Referee {
	return &Referee{}
}

// ValidateMove reports whether player may place a disk at m.
func (r *Referee) ValidateMove(board *Board, player Player, m Move) bool {
	return r.FindFlipCellsForMove(board, player, m, &r.flipCells)
}

// FindFlipCellsForMove fills out with every disk that flips to player if m is
// played. It returns false, leaving out empty, when m is illegal.
func (r *Referee) FindFlipCellsForMove(board *Board, player Player, m Move, out *MoveBuffer) bool {
	out.Reset()
	if !m.Valid() || board.Grid[m.Row][m.Col].Taken {
		return false
	}
	if !findAdjacentOpposites(board, player, m, &r.adjacentOpposites) {
		return false
	}
	return findFlipCells(board, player, m, &r.adjacentOpposites, out)
}

// FindAllValidMoves fills out with the legal moves for player in row-major
// order and reports whether there is at least one.
func (r *Referee) FindAllValidMoves(board *Board, player Player, out *MoveBuffer) bool {
	out.Reset()
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			m := Move{Row: row, Col: col}
			if r.ValidateMove(board, player, m) {
				out.Push(m)
			}
		}
	}
	return out.Len() != 0
}

// ApplyMove places player's disk on m and flips every cell in flips. flips must
// come from FindFlipCellsForMove for the same board, player and move.
func (r *Referee) ApplyMove(board *Board, player Player, m Move, flips *MoveBuffer) {
	board.Grid[m.Row][m.Col] = Taken(player)
	for _, f := range flips.Moves() {
		board.Grid[f.Row][f.Col] = Taken(player)
	}
}

// CountDisks returns the number of disks owned by player and by the opponent.
func (r *Referee) CountDisks(board *Board, player Player) (mine, theirs int) {
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			c := board.Grid[row][col]
			if !c.Taken {
				continue
			}
			if c.Owner == player {
				mine++
			} else {
				theirs++
			}
		}
	}
	return mine, theirs
}

// CheckOutcome compares disk counts. It is only meaningful once neither player
// has a legal move.
func (r *Referee) CheckOutcome(board *Board) Outcome {
	black, white := r.CountDisks(board, Black)
	switch {
	case black > white:
		return Won(Black)
	case white > black:
		return Won(White)
	default:
		return Tie()
	}
}

func findAdjacentOpposites(board *Board, player Player, m Move, out *MoveBuffer) bool {
	out.Reset()
	startRow, endRow := max(m.Row-1, 0), min(m.Row+1, Size-1)
	startCol, endCol := max(m.Col-1, 0), min(m.Col+1, Size-1)
	for row := startRow; row <= endRow; row++ {
		for col := startCol; col <= endCol; col++ {
			if row == m.Row && col == m.Col {
				continue
			}
			if c := board.Grid[row][col]; c.Taken && c.Owner != player {
				out.Push(Move{Row: row, Col: col})
			}
		}
	}
	return out.Len() != 0
}

// findFlipCells expects adjacent to hold the adjacent opposites of m.
func findFlipCells(board *Board, player Player, m Move, adjacent, out *MoveBuffer) bool {
	out.Reset()
	for _, a := range adjacent.Moves() {
		castRay(board, player, a, a.Row-m.Row, a.Col-m.Col, out)
	}
	return out.Len() != 0
}

// castRay walks from start, an opponent disk, in direction (dRow, dCol). When
// the run of opponent disks is closed by one of player's disks the run is
// appended to out, farthest cell first.
func castRay(board *Board, player Player, start Move, dRow, dCol int, out *MoveBuffer) bool {
	row, col := start.Row, start.Col
	steps := 0
	for {
		if row < 0 || row >= Size || col < 0 || col >= Size {
			return false
		}
		c := board.Grid[row][col]
		if !c.Taken {
			return false
		}
		if c.Owner == player {
			break
		}
		steps++
		row += dRow
		col += dCol
	}
	for k := steps - 1; k >= 0; k-- {
		out.Push(Move{Row: start.Row + k*dRow, Col: start.Col + k*dCol})
	}
	return true
}

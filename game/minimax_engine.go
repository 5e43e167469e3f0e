package game

import "math"

// MinimaxMove searches depth plies ahead and returns the best move for player
// with its score. Moves tied on score are equally likely to be chosen. Depth 0
// or a position without legal moves yields NoMove.
func (a *Agent) MinimaxMove(board *Board, player Player, depth int) (Move, float64) {
	return a.search(board, player, depth)
}

func (a *Agent) search(board *Board, player Player, depth int) (Move, float64) {
	if depth <= 0 {
		return NoMove, 0
	}

	best := NoMove
	bestScore := math.Inf(-1)
	tied := 0
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			mv := Move{Row: row, Col: col}
			if !a.referee.FindFlipCellsForMove(board, player, mv, &a.scratch) {
				continue
			}
			next := board.Clone()
			a.referee.ApplyMove(&next, player, mv, &a.scratch)

			var score float64
			if depth == 1 {
				score = evaluate(a.referee, &next, player)
			} else {
				reply, replyScore := a.search(&next, player.Opponent(), depth-1)
				if reply.Valid() {
					score = -replyScore
				} else {
					// The opponent has to pass; score the position as it stands.
					score = evaluate(a.referee, &next, player)
				}
			}

			switch {
			case score > bestScore:
				best = mv
				bestScore = score
				tied = 1
			case score == bestScore:
				// Reservoir sampling keeps every tied move equally likely.
				if a.rng.Intn(tied+1) == 0 {
					best = mv
				}
				tied++
			}
		}
	}
	return best, bestScore
}

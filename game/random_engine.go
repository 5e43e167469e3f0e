package game

// RandomMove picks one of player's legal moves uniformly at random, or NoMove
// when there is none.
func (a *Agent) RandomMove(board *Board, player Player) Move {
	if !a.referee.FindAllValidMoves(board, player, &a.scratch) {
		return NoMove
	}
	return a.scratch.At(a.rng.Intn(a.scratch.Len()))
}

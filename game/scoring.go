package game

// evaluate scores board for player as the disk-count differential.
func evaluate(r *Referee, board *Board, player Player) float64 {
	mine, theirs := r.CountDisks(board, player)
	return float64(mine - theirs)
}

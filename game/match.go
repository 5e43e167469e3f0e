package game

import (
	"errors"
	"fmt"
)

var (
	ErrGameOver    = errors.New("game is over")
	ErrIllegalMove = errors.New("illegal move")
	ErrOutOfBounds = errors.New("move is outside the board")
	ErrNotYourTurn = errors.New("not this player's turn")
)

// Turn is one entry of a match history. A pass is recorded with NoMove.
type Turn struct {
	Player Player
	Move   Move
}

// Match drives a game: it applies moves, hands the turn over, skips players
// that cannot move and detects the end of the game.
type Match struct {
	referee *Referee
	board   Board
	turn    Player
	legal   MoveBuffer
	flips   MoveBuffer
	history []Turn
	over    bool
}

func NewMatch() *Match {
	return NewMatchFrom(NewBoard(), Black)
}

// NewMatchFrom starts a match from an arbitrary position with turn to move.
func NewMatchFrom(board Board, turn Player) *Match {
	m := &Match{
		referee: NewReferee(),
		board:   board,
		turn:    turn,
	}
	m.settle()
	return m
}

func (m *Match) Board() Board {
	return m.board
}

func (m *Match) Turn() Player {
	return m.turn
}

func (m *Match) Over() bool {
	return m.over
}

// Outcome is only available once the match is over.
func (m *Match) Outcome() (Outcome, bool) {
	if !m.over {
		return Outcome{}, false
	}
	return m.referee.CheckOutcome(&m.board), true
}

func (m *Match) Counts() (black, white int) {
	return m.referee.CountDisks(&m.board, Black)
}

// LegalMoves returns the moves available to the player to move.
func (m *Match) LegalMoves() []Move {
	return append([]Move(nil), m.legal.Moves()...)
}

// Flips returns the disks mv would flip for the player to move.
func (m *Match) Flips(mv Move) ([]Move, bool) {
	if !m.referee.FindFlipCellsForMove(&m.board, m.turn, mv, &m.flips) {
		return nil, false
	}
	return append([]Move(nil), m.flips.Moves()...), true
}

func (m *Match) History() []Turn {
	return append([]Turn(nil), m.history...)
}

// PlayAs plays mv for player, rejecting it if player is not the one to move.
func (m *Match) PlayAs(player Player, mv Move) error {
	if !m.over && player != m.turn {
		return fmt.Errorf("%s cannot move: %w", player, ErrNotYourTurn)
	}
	return m.Play(mv)
}

// Play plays mv for the player to move.
func (m *Match) Play(mv Move) error {
	if m.over {
		return ErrGameOver
	}
	if !mv.Valid() {
		return fmt.Errorf("%d,%d: %w", mv.Row, mv.Col, ErrOutOfBounds)
	}
	if !m.referee.FindFlipCellsForMove(&m.board, m.turn, mv, &m.flips) {
		return fmt.Errorf("%s at %s: %w", m.turn, mv, ErrIllegalMove)
	}
	m.referee.ApplyMove(&m.board, m.turn, mv, &m.flips)
	m.history = append(m.history, Turn{Player: m.turn, Move: mv})
	m.turn = m.turn.Opponent()
	m.settle()
	return nil
}

// settle makes sure the player to move has a legal move, passing the turn
// back when it does not, and ends the match when neither side can move.
func (m *Match) settle() {
	if m.referee.FindAllValidMoves(&m.board, m.turn, &m.legal) {
		return
	}
	other := m.turn.Opponent()
	if m.referee.FindAllValidMoves(&m.board, other, &m.legal) {
		m.history = append(m.history, Turn{Player: m.turn, Move: NoMove})
		m.turn = other
		return
	}
	m.over = true
}

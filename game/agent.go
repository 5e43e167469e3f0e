package game

import (
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Algorithm int

const (
	AlgorithmRandom Algorithm = iota
	AlgorithmMinimax
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmRandom:
		return "random"
	case AlgorithmMinimax:
		return "minimax"
	default:
		return "unknown"
	}
}

func ParseAlgorithm(value string) (Algorithm, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "random":
		return AlgorithmRandom, true
	case "minimax":
		return AlgorithmMinimax, true
	default:
		return AlgorithmRandom, false
	}
}

// MoveRequest asks the agent to pick a move for Player on Board. Depth only
// applies to AlgorithmMinimax.
type MoveRequest struct {
	Board     Board
	Player    Player
	Pacing    bool
	Algorithm Algorithm
	Depth     int
}

// MoveResult echoes the request's board and player so a caller can tell
// whether the result still applies to its current position.
type MoveResult struct {
	Board  Board
	Player Player
	Move   Move
}

// Matches reports whether the result was computed for board and player.
func (r MoveResult) Matches(board *Board, player Player) bool {
	return r.Player == player && r.Board == *board
}

type AgentOptions struct {
	Seed int64
	// PacingDelay is slept before answering requests that ask for pacing.
	PacingDelay time.Duration
	Logger      *slog.Logger
}

// Agent picks moves for computer players. It is single-threaded: give each
// goroutine its own Agent.
type Agent struct {
	referee     *Referee
	scratch     MoveBuffer
	rng         *rand.Rand
	pacingDelay time.Duration
	logger      *slog.Logger
}

func NewAgent(opts AgentOptions) *Agent {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		referee:     NewReferee(),
		rng:         rand.New(rand.NewSource(opts.Seed)),
		pacingDelay: opts.PacingDelay,
		logger:      logger,
	}
}

// Compute answers a single request synchronously, without pacing.
func (a *Agent) Compute(req MoveRequest) MoveResult {
	start := time.Now()
	var mv Move
	switch req.Algorithm {
	case AlgorithmRandom:
		mv = a.RandomMove(&req.Board, req.Player)
	case AlgorithmMinimax:
		mv, _ = a.MinimaxMove(&req.Board, req.Player, req.Depth)
	default:
		a.logger.Warn("unknown algorithm requested", "algorithm", int(req.Algorithm))
		mv = NoMove
	}
	observeSearch(req.Algorithm, mv, time.Since(start))
	return MoveResult{Board: req.Board, Player: req.Player, Move: mv}
}

// Run serves requests until the requests channel is closed. Every received
// request is answered on results, in order.
func (a *Agent) Run(requests <-chan MoveRequest, results chan<- MoveResult) {
	for req := range requests {
		id := uuid.NewString()
		a.logger.Debug("agent received request",
			"request_id", id,
			"player", req.Player.String(),
			"algorithm", req.Algorithm.String(),
			"depth", req.Depth,
		)
		start := time.Now()
		result := a.Compute(req)
		if req.Pacing && a.pacingDelay > 0 {
			time.Sleep(a.pacingDelay)
		}
		results <- result
		a.logger.Debug("agent sent result",
			"request_id", id,
			"move", result.Move.String(),
			"elapsed", time.Since(start),
		)
	}
	a.logger.Debug("agent request channel closed, exiting")
}

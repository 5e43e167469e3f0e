package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"othello/game"
	"othello/stats"
)

const (
	modeHuman   = "human"
	modeRandom  = "random"
	modeMinimax = "minimax"

	maxDepth            = 8
	defaultDepth        = 3
	defaultTickInterval = 100 * time.Millisecond
)

var staleResults = promauto.NewCounter(prometheus.CounterOpts{
	Name: "othello_server_stale_results_total",
	Help: "Agent results discarded because the game moved on before they arrived",
})

type playerSetting struct {
	Mode  string
	Depth int
}

func (p playerSetting) label() string {
	return stats.PlayerLabel(p.Mode, p.Depth)
}

type Options struct {
	Static       http.FileSystem
	Logger       *slog.Logger
	Agent        *game.Agent
	Stats        *stats.Store
	TickInterval time.Duration
	Pacing       bool
	Black        string
	White        string
	Depth        int
}

// Server owns one match and drives computer players through a background
// agent worker. All game state is guarded by mu.
type Server struct {
	mu       sync.Mutex
	gameID   string
	match    *game.Match
	players  map[game.Player]playerSetting
	pacing   bool
	awaiting bool
	recorded bool

	worker *game.Worker
	stats  *stats.Store
	hub    *Hub
	static http.Handler
	logger *slog.Logger

	tick    time.Duration
	stopCh  chan struct{}
	stopped sync.WaitGroup
	closing sync.Once
}

func New(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	agent := opts.Agent
	if agent == nil {
		agent = game.NewAgent(game.AgentOptions{Seed: time.Now().UnixNano(), Logger: logger})
	}
	tick := opts.TickInterval
	if tick <= 0 {
		tick = defaultTickInterval
	}
	depth := opts.Depth
	if depth == 0 {
		depth = defaultDepth
	}

	s := &Server{
		players: map[game.Player]playerSetting{
			game.Black: {Mode: modeHuman, Depth: depth},
			game.White: {Mode: modeMinimax, Depth: depth},
		},
		pacing: opts.Pacing,
		stats:  opts.Stats,
		hub:    NewHub(logger),
		logger: logger,
		tick:   tick,
		stopCh: make(chan struct{}),
	}
	if opts.Static != nil {
		s.static = http.FileServer(opts.Static)
	}
	for player, mode := range map[game.Player]string{game.Black: opts.Black, game.White: opts.White} {
		if mode == "" {
			continue
		}
		if err := s.setPlayerLocked(player, mode, depth); err != nil {
			return nil, fmt.Errorf("server: %s player: %w", player, err)
		}
	}
	s.newGameLocked()

	s.worker = game.StartWorker(agent)
	s.stopped.Add(2)
	go func() {
		defer s.stopped.Done()
		s.hub.Run(s.stopCh)
	}()
	go func() {
		defer s.stopped.Done()
		s.runDriver()
	}()
	return s, nil
}

// Close stops the driver, the hub and the agent worker.
func (s *Server) Close() {
	s.closing.Do(func() {
		close(s.stopCh)
		s.stopped.Wait()
		s.worker.Close()
	})
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/api/state", s.handleState)
	r.Get("/api/legal", s.handleLegal)
	r.Get("/api/flips", s.handleFlips)
	r.Post("/api/move", s.handleMove)
	r.Post("/api/reset", s.handleReset)
	r.Get("/api/players", s.handlePlayers)
	r.Post("/api/players", s.handlePlayers)
	r.Get("/api/stats", s.handleStats)
	r.Get("/ws", s.handleWebSocket)
	r.Handle("/metrics", promhttp.Handler())
	if s.static != nil {
		r.Handle("/*", s.static)
	}
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

type playerPayload struct {
	Mode  string `json:"mode"`
	Depth int    `json:"depth,omitempty"`
}

type historyEntry struct {
	Player string `json:"player"`
	Move   string `json:"move"`
}

type statePayload struct {
	GameID   string                   `json:"game_id"`
	Board    [][]string               `json:"board"`
	Turn     string                   `json:"turn"`
	Legal    []string                 `json:"legal"`
	Black    int                      `json:"black"`
	White    int                      `json:"white"`
	Over     bool                     `json:"over"`
	Outcome  string                   `json:"outcome,omitempty"`
	Winner   string                   `json:"winner,omitempty"`
	Thinking bool                     `json:"thinking"`
	Pacing   bool                     `json:"pacing"`
	Players  map[string]playerPayload `json:"players"`
	History  []historyEntry           `json:"history"`
}

type moveRequest struct {
	At string `json:"at"`
}

type moveResponse struct {
	Success bool         `json:"success"`
	Error   string       `json:"error,omitempty"`
	State   statePayload `json:"state"`
	Message string       `json:"message,omitempty"`
}

type flipsResponse struct {
	At    string   `json:"at"`
	Legal bool     `json:"legal"`
	Flips []string `json:"flips"`
}

type playersRequest struct {
	Player string `json:"player"`
	Mode   string `json:"mode"`
	Depth  int    `json:"depth"`
	Pacing *bool  `json:"pacing,omitempty"`
}

type playersResponse struct {
	Players map[string]playerPayload `json:"players"`
	Pacing  bool                     `json:"pacing"`
}

type statResponse struct {
	WinRatio  float64 `json:"win_ratio"`
	TieRatio  float64 `json:"tie_ratio"`
	LoseRatio float64 `json:"lose_ratio"`
	Count     float64 `json:"count"`
	Summary   string  `json:"summary"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	payload := s.serializeStateLocked()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleLegal(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	moves := s.match.LegalMoves()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string][]string{"moves": formatMoves(moves)})
}

func (s *Server) handleFlips(w http.ResponseWriter, r *http.Request) {
	at := strings.TrimSpace(r.URL.Query().Get("at"))
	if at == "" {
		http.Error(w, "query 'at' is required", http.StatusBadRequest)
		return
	}
	mv, err := game.ParseMove(at)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	flips, legal := s.match.Flips(mv)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, flipsResponse{At: mv.String(), Legal: legal, Flips: formatMoves(flips)})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	mv, err := game.ParseMove(req.At)
	if err != nil {
		s.writeMoveErrorLocked(w, http.StatusBadRequest, err)
		return
	}
	turn := s.match.Turn()
	if !s.match.Over() && s.players[turn].Mode != modeHuman {
		s.writeMoveErrorLocked(w, http.StatusConflict, fmt.Errorf("%s is played by the computer: %w", turn, game.ErrNotYourTurn))
		return
	}
	if err := s.match.Play(mv); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, game.ErrGameOver) {
			status = http.StatusConflict
		}
		s.writeMoveErrorLocked(w, status, err)
		return
	}
	s.afterMoveLocked()

	payload := s.serializeStateLocked()
	resp := moveResponse{Success: true, State: payload}
	if payload.Over {
		resp.Message = payload.Outcome
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeMoveErrorLocked(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, moveResponse{
		Success: false,
		Error:   err.Error(),
		State:   s.serializeStateLocked(),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.newGameLocked()
	payload := s.serializeStateLocked()
	s.mu.Unlock()

	s.hub.Publish("reset", payload)
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Method == http.MethodPost {
		var req playersRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		if req.Pacing != nil {
			s.pacing = *req.Pacing
		}
		if req.Player != "" || req.Mode != "" {
			player, ok := game.ParsePlayer(req.Player)
			if !ok {
				http.Error(w, "unknown player", http.StatusBadRequest)
				return
			}
			depth := req.Depth
			if depth == 0 {
				depth = s.players[player].Depth
			}
			if err := s.setPlayerLocked(player, req.Mode, depth); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		s.publishStateLocked()
	}
	writeJSON(w, http.StatusOK, playersResponse{Players: s.playersPayloadLocked(), Pacing: s.pacing})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]statResponse)
	if s.stats != nil {
		all, err := s.stats.All()
		if err != nil {
			s.logger.Error("failed to read statistics", "error", err)
			http.Error(w, "failed to read statistics", http.StatusInternalServerError)
			return
		}
		for label, stat := range all {
			out[label] = statResponse{
				WinRatio:  stat.WinRatio,
				TieRatio:  stat.TieRatio,
				LoseRatio: stat.LoseRatio,
				Count:     stat.Count,
				Summary:   stat.String(),
			}
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("failed to upgrade websocket", "error", err)
		return
	}
	s.mu.Lock()
	initial, err := encodeMessage("state", s.serializeStateLocked())
	s.mu.Unlock()
	if err != nil {
		s.logger.Error("failed to encode initial state", "error", err)
		_ = conn.Close()
		return
	}
	s.logger.Info("websocket client connected", "remote", r.RemoteAddr)
	s.hub.serve(conn, initial)
	s.logger.Info("websocket client disconnected", "remote", r.RemoteAddr)
}

func (s *Server) setPlayerLocked(player game.Player, mode string, depth int) error {
	mode = strings.ToLower(strings.TrimSpace(mode))
	switch mode {
	case "":
		mode = modeHuman
	case modeHuman, modeRandom, modeMinimax:
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
	if depth < 1 || depth > maxDepth {
		return fmt.Errorf("depth must be between 1 and %d", maxDepth)
	}
	s.players[player] = playerSetting{Mode: mode, Depth: depth}
	return nil
}

// newGameLocked starts a fresh match. A request still in flight for the old
// game stays outstanding; its result is discarded as stale when it arrives.
func (s *Server) newGameLocked() {
	s.gameID = uuid.NewString()
	s.match = game.NewMatch()
	s.recorded = false
	s.logger.Info("new game", "game_id", s.gameID,
		"black", s.players[game.Black].label(), "white", s.players[game.White].label())
}

func (s *Server) runDriver() {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.step()
		}
	}
}

// step advances computer play by at most one action: collect a finished
// result, or hand the current position to the agent.
func (s *Server) step() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.awaiting {
		res, ok := s.worker.Poll()
		if !ok {
			return
		}
		s.awaiting = false
		board := s.match.Board()
		if s.match.Over() || !res.Matches(&board, s.match.Turn()) || s.players[res.Player].Mode == modeHuman {
			staleResults.Inc()
			s.logger.Debug("discarding stale agent result", "game_id", s.gameID, "move", res.Move.String())
			s.publishStateLocked()
			return
		}
		if !res.Move.Valid() {
			s.logger.Warn("agent found no move for a player with legal moves", "game_id", s.gameID, "player", res.Player.String())
			return
		}
		if err := s.match.PlayAs(res.Player, res.Move); err != nil {
			s.logger.Error("agent move rejected", "game_id", s.gameID, "move", res.Move.String(), "error", err)
			return
		}
		s.logger.Debug("agent moved", "game_id", s.gameID, "player", res.Player.String(), "move", res.Move.String())
		s.afterMoveLocked()
		return
	}

	if s.match.Over() {
		return
	}
	turn := s.match.Turn()
	setting := s.players[turn]
	if setting.Mode == modeHuman {
		return
	}
	alg, _ := game.ParseAlgorithm(setting.Mode)
	s.worker.Submit(game.MoveRequest{
		Board:     s.match.Board(),
		Player:    turn,
		Pacing:    s.pacing,
		Algorithm: alg,
		Depth:     setting.Depth,
	})
	s.awaiting = true
	s.publishStateLocked()
}

func (s *Server) afterMoveLocked() {
	if s.match.Over() && !s.recorded {
		s.recorded = true
		s.recordOutcomeLocked()
	}
	s.publishStateLocked()
}

func (s *Server) recordOutcomeLocked() {
	outcome, _ := s.match.Outcome()
	black, white := s.match.Counts()
	s.logger.Info("game over", "game_id", s.gameID, "outcome", outcome.String(), "black", black, "white", white)
	if s.stats == nil {
		return
	}
	for _, player := range []game.Player{game.Black, game.White} {
		own := s.players[player]
		if own.Mode == modeHuman {
			continue
		}
		label := stats.Label(own.label(), s.players[player.Opponent()].label())
		if _, err := s.stats.Add(label, player, outcome); err != nil {
			s.logger.Error("failed to record statistics", "label", label, "error", err)
		}
	}
}

func (s *Server) publishStateLocked() {
	s.hub.Publish("state", s.serializeStateLocked())
}

func (s *Server) serializeStateLocked() statePayload {
	board := s.match.Board()
	black, white := s.match.Counts()
	payload := statePayload{
		GameID:   s.gameID,
		Board:    make([][]string, game.Size),
		Turn:     s.match.Turn().String(),
		Legal:    formatMoves(s.match.LegalMoves()),
		Black:    black,
		White:    white,
		Over:     s.match.Over(),
		Thinking: s.awaiting && !s.match.Over() && s.players[s.match.Turn()].Mode != modeHuman,
		Pacing:   s.pacing,
		Players:  s.playersPayloadLocked(),
	}
	for row := 0; row < game.Size; row++ {
		payload.Board[row] = make([]string, game.Size)
		for col := 0; col < game.Size; col++ {
			if c := board.Grid[row][col]; c.Taken {
				payload.Board[row][col] = c.Owner.String()
			}
		}
	}
	for _, t := range s.match.History() {
		payload.History = append(payload.History, historyEntry{Player: t.Player.String(), Move: t.Move.String()})
	}
	if outcome, ok := s.match.Outcome(); ok {
		payload.Outcome = outcome.String()
		if !outcome.Tie {
			payload.Winner = outcome.Winner.String()
		}
	}
	return payload
}

func (s *Server) playersPayloadLocked() map[string]playerPayload {
	out := make(map[string]playerPayload, 2)
	for player, setting := range s.players {
		p := playerPayload{Mode: setting.Mode}
		if setting.Mode == modeMinimax {
			p.Depth = setting.Depth
		}
		out[player.String()] = p
	}
	return out
}

func formatMoves(moves []game.Move) []string {
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		out = append(out, m.String())
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write JSON response", "error", err)
	}
}

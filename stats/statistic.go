// Package stats keeps running win, tie and loss ratios per matchup label.
package stats

import (
	"fmt"

	"othello/game"
)

// Statistic holds ratios in [0, 1] over Count finished games.
type Statistic struct {
	WinRatio  float64 `json:"win_ratio"`
	TieRatio  float64 `json:"tie_ratio"`
	LoseRatio float64 `json:"lose_ratio"`
	Count     float64 `json:"count"`
}

// Add folds one game, seen from player's side, into the running ratios.
func (s *Statistic) Add(player game.Player, outcome game.Outcome) {
	var win, tie, lose float64
	switch {
	case outcome.Tie:
		tie = 1
	case outcome.Winner == player:
		win = 1
	default:
		lose = 1
	}
	for _, r := range []struct {
		ratio *float64
		value float64
	}{
		{&s.WinRatio, win},
		{&s.TieRatio, tie},
		{&s.LoseRatio, lose},
	} {
		*r.ratio = (*r.ratio*s.Count + r.value) / (s.Count + 1)
	}
	s.Count++
}

func (s Statistic) String() string {
	return fmt.Sprintf("%.1f%%, %.1f%%, %.1f%%, (%.0f)", s.WinRatio*100, s.TieRatio*100, s.LoseRatio*100, s.Count)
}

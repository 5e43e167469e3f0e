package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"othello/game"
)

func TestStatisticRunningRatios(t *testing.T) {
	t.Parallel()

	var s Statistic
	s.Add(game.Black, game.Won(game.Black))
	s.Add(game.Black, game.Won(game.White))
	s.Add(game.Black, game.Tie())
	s.Add(game.Black, game.Won(game.Black))

	assert.Equal(t, 4.0, s.Count)
	assert.InDelta(t, 0.5, s.WinRatio, 1e-9)
	assert.InDelta(t, 0.25, s.TieRatio, 1e-9)
	assert.InDelta(t, 0.25, s.LoseRatio, 1e-9)
	assert.InDelta(t, 1.0, s.WinRatio+s.TieRatio+s.LoseRatio, 1e-9)
	assert.Equal(t, "50.0%, 25.0%, 25.0%, (4)", s.String())
}

func TestStatisticFromWhiteSide(t *testing.T) {
	t.Parallel()

	var s Statistic
	s.Add(game.White, game.Won(game.White))
	s.Add(game.White, game.Won(game.Black))
	assert.InDelta(t, 0.5, s.WinRatio, 1e-9)
	assert.InDelta(t, 0.5, s.LoseRatio, 1e-9)
	assert.Zero(t, s.TieRatio)
}

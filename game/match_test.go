package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchOpening(t *testing.T) {
	t.Parallel()

	match := NewMatch()
	assert.Equal(t, Black, match.Turn())
	assert.False(t, match.Over())
	assert.Equal(t, []Move{mv(2, 3), mv(3, 2), mv(4, 5), mv(5, 4)}, match.LegalMoves())

	flips, ok := match.Flips(mv(2, 3))
	require.True(t, ok)
	assert.Equal(t, []Move{mv(3, 3)}, flips)

	_, ok = match.Outcome()
	assert.False(t, ok)
}

func TestMatchRejectsBadMoves(t *testing.T) {
	t.Parallel()

	match := NewMatch()
	err := match.Play(mv(2, 2))
	assert.True(t, errors.Is(err, ErrIllegalMove), "got %v", err)

	err = match.Play(NoMove)
	assert.True(t, errors.Is(err, ErrOutOfBounds), "got %v", err)

	err = match.PlayAs(White, mv(2, 4))
	assert.True(t, errors.Is(err, ErrNotYourTurn), "got %v", err)

	assert.Empty(t, match.History())
	assert.Equal(t, NewBoard(), match.Board())
}

func TestMatchAlternatesTurns(t *testing.T) {
	t.Parallel()

	match := NewMatch()
	require.NoError(t, match.PlayAs(Black, mv(2, 3)))
	assert.Equal(t, White, match.Turn())
	require.NoError(t, match.PlayAs(White, mv(2, 2)))
	assert.Equal(t, Black, match.Turn())

	assert.Equal(t, []Turn{
		{Player: Black, Move: mv(2, 3)},
		{Player: White, Move: mv(2, 2)},
	}, match.History())

	black, white := match.Counts()
	assert.Equal(t, 3, black)
	assert.Equal(t, 3, white)
}

func TestMatchPassesAndEnds(t *testing.T) {
	t.Parallel()

	b := emptyBoard()
	b.Grid[0][0] = Taken(Black)
	b.Grid[0][1] = Taken(White)

	// White cannot move, so the turn passes straight to Black.
	match := NewMatchFrom(b, White)
	require.False(t, match.Over())
	assert.Equal(t, Black, match.Turn())
	assert.Equal(t, []Turn{{Player: White, Move: NoMove}}, match.History())

	require.NoError(t, match.Play(mv(0, 2)))
	assert.True(t, match.Over())
	assert.Empty(t, match.LegalMoves())

	outcome, ok := match.Outcome()
	require.True(t, ok)
	assert.Equal(t, Won(Black), outcome)
	assert.Equal(t, "black wins", outcome.String())

	assert.ErrorIs(t, match.Play(mv(0, 3)), ErrGameOver)
}

func TestParseMove(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    Move
		wantErr bool
	}{
		{"d3", mv(2, 3), false},
		{"A1", mv(0, 0), false},
		{" h8 ", mv(7, 7), false},
		{"i1", NoMove, true},
		{"a9", NoMove, true},
		{"a10", NoMove, true},
		{"", NoMove, true},
	}
	for _, tc := range cases {
		got, err := ParseMove(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
		assert.Equal(t, got, mustParse(t, got.String()))
	}
	assert.Equal(t, "pass", NoMove.String())
}

func mustParse(t *testing.T, s string) Move {
	t.Helper()
	m, err := ParseMove(s)
	require.NoError(t, err)
	return m
}

func TestParsePlayer(t *testing.T) {
	t.Parallel()

	p, ok := ParsePlayer("White")
	require.True(t, ok)
	assert.Equal(t, White, p)
	assert.Equal(t, Black, p.Opponent())
	assert.Equal(t, White, p.Opponent().Opponent())

	_, ok = ParsePlayer("red")
	assert.False(t, ok)
}

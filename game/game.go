package game

import (
	"errors"
	"fmt"
	"strings"
)

// Size is the length of a board side.
const Size = 8

type Player uint8

const (
	Black Player = iota
	White
)

func (p Player) Opponent() Player {
	if p == Black {
		return White
	}
	return Black
}

func (p Player) String() string {
	if p == Black {
		return "black"
	}
	return "white"
}

func ParsePlayer(value string) (Player, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "black", "b":
		return Black, true
	case "white", "w":
		return White, true
	default:
		return Black, false
	}
}

// Cell is either empty or taken by Owner. The zero value is an empty cell.
type Cell struct {
	Owner Player
	Taken bool
}

func Taken(p Player) Cell {
	return Cell{Owner: p, Taken: true}
}

// Board is copied by value; every hypothetical branch works on its own copy.
type Board struct {
	Grid [Size][Size]Cell
}

func NewBoard() Board {
	var b Board
	b.Grid[3][3] = Taken(White)
	b.Grid[4][4] = Taken(White)
	b.Grid[3][4] = Taken(Black)
	b.Grid[4][3] = Taken(Black)
	return b
}

func (b *Board) Cell(m Move) Cell {
	return b.Grid[m.Row][m.Col]
}

func (b *Board) Clone() Board {
	return *b
}

func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")
	for row := 0; row < Size; row++ {
		fmt.Fprintf(&sb, "%d", row+1)
		for col := 0; col < Size; col++ {
			c := b.Grid[row][col]
			switch {
			case !c.Taken:
				sb.WriteString(" .")
			case c.Owner == Black:
				sb.WriteString(" X")
			default:
				sb.WriteString(" O")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Move addresses a cell by row and column.
type Move struct {
	Row int
	Col int
}

// NoMove lies outside the board and signals that no move is available.
var NoMove = Move{Row: Size, Col: Size}

func (m Move) Valid() bool {
	return m.Row >= 0 && m.Row < Size && m.Col >= 0 && m.Col < Size
}

// String renders m in algebraic notation: column letter, then 1-based row.
func (m Move) String() string {
	if !m.Valid() {
		return "pass"
	}
	return fmt.Sprintf("%c%d", 'a'+m.Col, m.Row+1)
}

func ParseMove(token string) (Move, error) {
	s := strings.ToLower(strings.TrimSpace(token))
	if len(s) != 2 {
		return NoMove, errors.New("coord format d3")
	}
	colRune := s[0]
	rowRune := s[1]
	if colRune < 'a' || colRune > 'h' {
		return NoMove, errors.New("column must be a-h")
	}
	if rowRune < '1' || rowRune > '8' {
		return NoMove, errors.New("row must be 1-8")
	}
	return Move{Row: int(rowRune - '1'), Col: int(colRune - 'a')}, nil
}

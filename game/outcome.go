package game

// Outcome is the result of a finished game: a win for Winner, or a tie.
type Outcome struct {
	Winner Player
	Tie    bool
}

func Won(p Player) Outcome {
	return Outcome{Winner: p}
}

func Tie() Outcome {
	return Outcome{Tie: true}
}

// WonBy reports whether p won.
func (o Outcome) WonBy(p Player) bool {
	return !o.Tie && o.Winner == p
}

func (o Outcome) String() string {
	if o.Tie {
		return "tie"
	}
	return o.Winner.String() + " wins"
}

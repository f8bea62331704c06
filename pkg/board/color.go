package board

// Color represents the playing side/color: White or Black. 1 bit. Black is 0
// and White is 1, so that the Zobrist side-to-move key is folded in iff the
// side to move is White (see ZobristTable.Hash).
type Color uint8

const (
	Black Color = iota
	White
)

const (
	ZeroColor Color = 0
	NumColors Color = 2
)

// Opponent returns the other color.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	switch c {
	case White:
		return "w"
	case Black:
		return "b"
	default:
		return "?"
	}
}

package board

import "fmt"

// Move represents a not-necessarily-legal move: a source square, a destination
// square, and a promotion kind (NoPiece if none). Eval carries a transient
// per-move score used for move ordering and as the search's return value; it
// is not part of move identity (see Equals).
type Move struct {
	From, To  Square
	Promotion Piece
	Eval      int32
}

// ParseMove parses a move in pure algebraic coordinate notation, such as
// "a2a4" or "a7a8q". Files a-h map to File values 7 down to 0 (h is 0);
// ranks 1-8 map to 0-7.
func ParseMove(str string) (Move, error) {
	runes := []rune(str)
	if len(runes) < 4 || len(runes) > 5 {
		return Move{}, fmt.Errorf("invalid move: %q", str)
	}

	from, err := ParseSquare(runes[0], runes[1])
	if err != nil {
		return Move{}, fmt.Errorf("invalid from square in %q: %w", str, err)
	}
	to, err := ParseSquare(runes[2], runes[3])
	if err != nil {
		return Move{}, fmt.Errorf("invalid to square in %q: %w", str, err)
	}

	if len(runes) == 5 {
		promo, ok := ParsePiece(runes[4])
		if !ok || promo == Pawn || promo == King {
			return Move{}, fmt.Errorf("invalid promotion in %q", str)
		}
		return Move{From: from, To: to, Promotion: promo}, nil
	}
	return Move{From: from, To: to, Promotion: NoPiece}, nil
}

// Equals compares move identity: source, destination and promotion. Eval is
// transient and excluded.
func (m Move) Equals(o Move) bool {
	return m.From == o.From && m.To == o.To && m.Promotion == o.Promotion
}

// IsNone reports whether m is the blank/null move (used as a book-terminus
// sentinel and as the "no legal move found yet" placeholder).
func (m Move) IsNone() bool {
	return m == Move{}
}

func (m Move) String() string {
	if m.Promotion != NoPiece {
		return fmt.Sprintf("%v%v%v", m.From, m.To, m.Promotion)
	}
	return fmt.Sprintf("%v%v", m.From, m.To)
}

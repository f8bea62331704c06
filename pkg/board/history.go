package board

// History is an append-only stack of played moves layered on top of a single
// mutable Position. Make snapshots the position before mutating it in place;
// Unmake restores that snapshot wholesale rather than reversing the move,
// which keeps Position.Make simple (it never needs an inverse).
type History struct {
	zt     *ZobristTable
	pos    *Position
	stack  []entry
	hashes []ZobristHash // post-move hash at each ply, including ply 0
}

type entry struct {
	snapshot Position
	move     Move
}

// NewHistory wraps pos for move-by-move play. pos is retained, not copied.
func NewHistory(zt *ZobristTable, pos *Position) *History {
	return &History{zt: zt, pos: pos, hashes: []ZobristHash{pos.Hash()}}
}

// Position returns the live, current position.
func (h *History) Position() *Position {
	return h.pos
}

// Len returns the number of moves played.
func (h *History) Len() int {
	return len(h.stack)
}

// Moves returns the sequence of moves played so far, from the root.
func (h *History) Moves() []Move {
	moves := make([]Move, len(h.stack))
	for i, e := range h.stack {
		moves[i] = e.move
	}
	return moves
}

// LastMove returns the most recently played move, if any.
func (h *History) LastMove() (Move, bool) {
	if len(h.stack) == 0 {
		return Move{}, false
	}
	return h.stack[len(h.stack)-1].move, true
}

// Make plays m, which must be pseudo-legal, unconditionally.
func (h *History) Make(m Move) {
	snapshot := *h.pos
	h.pos.Make(h.zt, m)
	h.stack = append(h.stack, entry{snapshot: snapshot, move: m})
	h.hashes = append(h.hashes, h.pos.Hash())
}

// Unmake reverts the last move played.
func (h *History) Unmake() {
	n := len(h.stack) - 1
	e := h.stack[n]
	*h.pos = e.snapshot
	h.stack = h.stack[:n]
	h.hashes = h.hashes[:n+1]
}

// TryMake plays the pseudo-legal move m and reports whether it was legal,
// i.e. whether the mover's own king is safe afterwards. An illegal move is
// unmade before returning, so the position is unchanged on a false result.
// This is the legality filter described for pseudo-legal generation: make,
// test, unmake.
func (h *History) TryMake(m Move) bool {
	mover := h.pos.Side()
	h.Make(m)
	if h.pos.IsChecked(mover) {
		h.Unmake()
		return false
	}
	return true
}

// IsThreefoldRepetition reports whether the current position has occurred at
// least three times since the last irreversible move (a pawn move or
// capture, tracked via the halfmove clock).
func (h *History) IsThreefoldRepetition() bool {
	cur := h.pos.Hash()
	n := len(h.hashes)
	start := n - 1 - h.pos.HalfmoveClock()
	if start < 0 {
		start = 0
	}

	count := 0
	for i := n - 1; i >= start; i-- {
		if h.hashes[i] == cur {
			count++
		}
	}
	return count >= 3
}

// IsFiftyMoveRule reports whether the halfmove clock has reached the
// no-progress threshold.
func (h *History) IsFiftyMoveRule() bool {
	return h.pos.HalfmoveClock() >= 50
}

// IsInsufficientMaterial reports whether neither side has enough material to
// deliver checkmate. Ported from original_source/src/board.c's
// evaluate_draw: K vs K; K+B or K+N vs K; and K+B vs K+B only when both
// bishops sit on the same square color complex (opposite-colored bishops
// are not a dead draw and must not be reported as insufficient material).
func (h *History) IsInsufficientMaterial() bool {
	p := h.pos
	for c := ZeroColor; c < NumColors; c++ {
		if p.pieces[c][Pawn]|p.pieces[c][Rook]|p.pieces[c][Queen] != 0 {
			return false
		}
	}

	wBishops, wKnights := p.pieces[White][Bishop].PopCount(), p.pieces[White][Knight].PopCount()
	bBishops, bKnights := p.pieces[Black][Bishop].PopCount(), p.pieces[Black][Knight].PopCount()
	wMinors, bMinors := wBishops+wKnights, bBishops+bKnights

	switch {
	case wMinors == 0 && bMinors == 0:
		return true // K vs K
	case wMinors == 1 && bMinors == 0, wMinors == 0 && bMinors == 1:
		return true // K+B or K+N vs K
	case wMinors == 1 && bMinors == 1:
		if wBishops == 1 && bBishops == 1 {
			return sameColorComplex(p.pieces[White][Bishop].LastPopSquare(), p.pieces[Black][Bishop].LastPopSquare())
		}
		return false // K+N vs K+N or K+B vs K+N: not a dead draw
	default:
		return false
	}
}

// sameColorComplex reports whether a and b are the same light/dark square color.
func sameColorComplex(a, b Square) bool {
	return (int(a.File())+int(a.Rank()))%2 == (int(b.File())+int(b.Rank()))%2
}

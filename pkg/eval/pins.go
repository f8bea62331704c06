package eval

import "github.com/relkin/chessdbot/pkg/board"

// Pin represents a pinned piece: a friendly piece that, if moved, would
// expose its king (or another higher-value piece) to Attacker along a
// rook or bishop line.
type Pin struct {
	Attacker, Pinned, Target board.Square
}

// FindPins returns every pin of side's piece(s) of kind piece against the
// nearest slider behind them once the piece is hypothetically lifted.
func FindPins(pos *board.Position, side board.Color, piece board.Piece) []Pin {
	var ret []Pin

	own := pos.Occupancy(side).Mask()
	opp := side.Opponent()

	for bb := pos.PieceBitboard(side, piece); bb != 0; {
		target := bb.LastPopSquare()
		bb &^= board.BitMask(target)

		rookRay := board.RookAttackboard(pos.Both(), target)
		for candidates := rookRay & own; candidates != 0; {
			pinned := candidates.LastPopSquare()
			candidates &^= board.BitMask(pinned)

			without := pos.Both().Xor(pinned)
			behind := board.RookAttackboard(without, target) &^ rookRay
			attackers := behind & (pos.PieceBitboard(opp, board.Rook) | pos.PieceBitboard(opp, board.Queen))
			if attackers != 0 {
				ret = append(ret, Pin{Attacker: attackers.LastPopSquare(), Pinned: pinned, Target: target})
			}
		}

		bishopRay := board.BishopAttackboard(pos.Both(), target)
		for candidates := bishopRay & own; candidates != 0; {
			pinned := candidates.LastPopSquare()
			candidates &^= board.BitMask(pinned)

			without := pos.Both().Xor(pinned)
			behind := board.BishopAttackboard(without, target) &^ bishopRay
			attackers := behind & (pos.PieceBitboard(opp, board.Bishop) | pos.PieceBitboard(opp, board.Queen))
			if attackers != 0 {
				ret = append(ret, Pin{Attacker: attackers.LastPopSquare(), Pinned: pinned, Target: target})
			}
		}
	}
	return ret
}

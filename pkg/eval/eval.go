// Package eval implements static position evaluation: a weighted sum of
// material, development, pawn structure and piece-control terms.
package eval

import "github.com/relkin/chessdbot/pkg/board"

// officers are the non-pawn, non-king piece kinds iterated for mobility and
// piece-control terms.
var officers = [4]board.Piece{board.Bishop, board.Knight, board.Rook, board.Queen}

// Evaluate returns the position score from perspective's point of view: a
// positive score favors perspective, a negative one favors the opponent.
func Evaluate(pos *board.Position, perspective board.Color, w Weights) Score {
	white := evalSide(pos, board.White, w) - evalSide(pos, board.Black, w)
	if perspective == board.White {
		return Crop(Score(white))
	}
	return Crop(Score(-white))
}

func evalSide(pos *board.Position, c board.Color, w Weights) int32 {
	var score int32

	score += materialScore(pos, c, w)
	score += developmentScore(pos, c, w)
	score += pawnStructureScore(pos, c, w)
	score += mobilityScore(pos, c, w)
	score += kingSafetyScore(pos, c, w)
	score -= pinPenalty(pos, c, w)

	return score
}

func materialScore(pos *board.Position, c board.Color, w Weights) int32 {
	var score int32
	score += int32(pos.PieceBitboard(c, board.Pawn).PopCount()) * w.Pawn
	score += int32(pos.PieceBitboard(c, board.Knight).PopCount()) * w.Knight
	score += int32(pos.PieceBitboard(c, board.Rook).PopCount()) * w.Rook
	score += int32(pos.PieceBitboard(c, board.Queen).PopCount()) * w.Queen

	bishops := pos.PieceBitboard(c, board.Bishop).PopCount()
	score += int32(bishops) * w.Bishop
	if bishops >= 2 {
		score += w.BishopPair
	}
	return score
}

// developmentScore rewards minor pieces that have left their home rank and
// a king that has already castled, and penalizes an early queen sortie.
func developmentScore(pos *board.Position, c board.Color, w Weights) int32 {
	homeRank := board.Rank1
	if c == board.Black {
		homeRank = board.Rank8
	}
	home := board.BitRank(homeRank)

	var score int32
	minors := pos.PieceBitboard(c, board.Bishop) | pos.PieceBitboard(c, board.Knight)
	developed := minors &^ home
	score += int32(developed.PopCount()) * w.DevelopmentBonus

	if pos.HasCastled(c) {
		score += w.KingCastledBonus
	}

	if pos.FullmoveNumber() < 10 {
		queen := pos.PieceBitboard(c, board.Queen)
		if queen != 0 && queen&home == 0 {
			score += w.EarlyQueenMove
		}
	}
	return score
}

func pawnStructureScore(pos *board.Position, c board.Color, w Weights) int32 {
	pawns := pos.PieceBitboard(c, board.Pawn)
	oppPawns := pos.PieceBitboard(c.Opponent(), board.Pawn)

	var score int32
	for f := board.ZeroFile; f < board.NumFiles; f++ {
		file := board.BitFile(f)
		count := (pawns & file).PopCount()
		if count >= 2 {
			score += int32(count-1) * w.DoubledPawnPenalty
		}
		if count > 0 {
			neighbors := board.EmptyBitboard
			if f > board.ZeroFile {
				neighbors |= board.BitFile(f - 1)
			}
			if f < board.NumFiles-1 {
				neighbors |= board.BitFile(f + 1)
			}
			if pawns&neighbors == 0 {
				score += w.IsolatedPawnPenalty
			}
		}
	}

	for bb := pawns; bb != 0; {
		sq := bb.LastPopSquare()
		bb &^= board.BitMask(sq)
		if isPassed(sq, c, oppPawns) {
			score += w.PassedPawnBonus * advancement(sq, c)
		}
	}
	return score
}

func isPassed(sq board.Square, c board.Color, oppPawns board.Bitboard) bool {
	f := sq.File()
	files := board.BitFile(f)
	if f > board.ZeroFile {
		files |= board.BitFile(f - 1)
	}
	if f < board.NumFiles-1 {
		files |= board.BitFile(f + 1)
	}

	ahead := board.EmptyBitboard
	if c == board.White {
		for r := sq.Rank() + 1; r < board.NumRanks; r++ {
			ahead |= board.BitRank(r)
		}
	} else {
		for r := int(sq.Rank()) - 1; r >= 0; r-- {
			ahead |= board.BitRank(board.Rank(r))
		}
	}
	return oppPawns&files&ahead == 0
}

func advancement(sq board.Square, c board.Color) int32 {
	if c == board.White {
		return int32(sq.Rank())
	}
	return int32(board.Rank8 - sq.Rank())
}

// mobilityScore credits each officer kind with the count of squares it
// attacks that are not occupied by its own side, plus fixed bonuses for a
// rook on a file with no friendly pawns (open or half-open) or on the 7th
// rank and a knight anchored on an outpost (defended by a friendly pawn,
// not attacked by an enemy pawn).
func mobilityScore(pos *board.Position, c board.Color, w Weights) int32 {
	own := pos.Occupancy(c).Mask()
	var score int32

	for _, k := range officers {
		bb := pos.PieceBitboard(c, k)
		for pieces := bb; pieces != 0; {
			sq := pieces.LastPopSquare()
			pieces &^= board.BitMask(sq)

			moves := board.Attackboard(pos.Both(), sq, k) &^ own
			score += int32(moves.PopCount()) * w.MobilityUnit[k]

			if k == board.Rook {
				file := board.BitFile(sq.File())
				if pos.PieceBitboard(c, board.Pawn)&file == 0 {
					score += w.RookOpenFileBonus
				}
				seventh := board.Rank7
				if c == board.Black {
					seventh = board.Rank2
				}
				if sq.Rank() == seventh {
					score += w.RookSeventhRankBonus
				}
			}
			if k == board.Knight && isOutpost(pos, sq, c) {
				score += w.KnightOutpostBonus
			}
		}
	}
	return score
}

func isOutpost(pos *board.Position, sq board.Square, c board.Color) bool {
	ownPawns := pos.PieceBitboard(c, board.Pawn)
	if board.PawnCaptureboard(c, ownPawns)&board.BitMask(sq) == 0 {
		return false
	}
	oppPawns := pos.PieceBitboard(c.Opponent(), board.Pawn)
	return board.PawnCaptureboard(c, board.BitMask(sq))&oppPawns == 0
}

// kingSafetyScore rewards friendly pieces sheltering the king in the two
// rings immediately around it, at half value for a sheltering piece that is
// itself pinned to the king (FindPins with King as target): it cannot step
// aside to block or capture without exposing the king to the pinning
// attacker, so it shelters less than an unpinned defender would.
func kingSafetyScore(pos *board.Position, c board.Color, w Weights) int32 {
	king := pos.PieceBitboard(c, board.King)
	if king == 0 {
		return 0
	}
	sq := king.LastPopSquare()
	own := pos.Occupancy(c).Mask()

	pinned := board.EmptyBitboard
	for _, pin := range FindPins(pos, c, board.King) {
		pinned |= board.BitMask(pin.Pinned)
	}

	ringScore := func(ring board.Bitboard, bonus int32) int32 {
		defenders := ring & own
		free := defenders &^ pinned
		held := defenders & pinned
		return int32(free.PopCount())*bonus + int32(held.PopCount())*(bonus/2)
	}

	var score int32
	score += ringScore(board.KingDistanceRing(sq, 1), w.KingSafetyRing[1])
	ring2 := board.KingDistanceRing(sq, 2) &^ board.KingDistanceRing(sq, 1)
	score += ringScore(ring2, w.KingSafetyRing[2])
	return score
}

// pinPenalty charges back a fraction of the pinned piece's own mobility
// bonus for every pin found against a friendly officer: a piece pinned in
// front of a bishop, knight or rook is restricted to the pin line exactly
// as if it were pinned to the king, just against a less valuable target.
func pinPenalty(pos *board.Position, c board.Color, w Weights) int32 {
	var penalty int32
	for _, k := range officers {
		if k == board.Queen {
			continue
		}
		for _, pin := range FindPins(pos, c, k) {
			if _, pinnedKind, ok := pos.Square(pin.Pinned); ok {
				penalty += w.MobilityUnit[pinnedKind]
			}
		}
	}
	return penalty
}

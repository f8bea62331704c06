package eval

// Weights is a flat, tunable record of every term the evaluator sums.
// cmd/chessdbot builds its weights from levels.xml (each level starting from
// DefaultWeights) and interpolates between levels with xmlfile.Scale.
type Weights struct {
	// Material, in centipawns.
	Pawn, Bishop, Knight, Rook, Queen int32

	BishopPair int32 // bonus for holding both bishops

	DevelopmentBonus int32 // per minor piece moved off its home square
	KingCastledBonus int32 // bonus for a king that has already castled
	EarlyQueenMove   int32 // penalty for moving the queen before move 10

	DoubledPawnPenalty  int32
	IsolatedPawnPenalty int32
	PassedPawnBonus     int32 // scaled further by rank advancement

	RookOpenFileBonus     int32
	RookSeventhRankBonus  int32
	KnightOutpostBonus    int32

	// MobilityUnit scales the legal-destination count of each officer
	// kind. Indexed by board.Piece; Pawn/NoPiece/King entries are unused.
	MobilityUnit [7]int32

	// KingSafetyRing scales the number of own pieces within Chebyshev
	// distance d of the king (d=1 and d=2 rings), penalizing an exposed
	// king in the middlegame.
	KingSafetyRing [3]int32
}

// DefaultWeights returns the baseline weight set the engine plays with at
// full strength (strength factor 100).
func DefaultWeights() Weights {
	return Weights{
		Pawn:   100,
		Bishop: 330,
		Knight: 320,
		Rook:   500,
		Queen:  900,

		BishopPair: 30,

		DevelopmentBonus: 10,
		KingCastledBonus: 40,
		EarlyQueenMove:   -15,

		DoubledPawnPenalty:  -20,
		IsolatedPawnPenalty: -15,
		PassedPawnBonus:     20,

		RookOpenFileBonus:    25,
		RookSeventhRankBonus: 20,
		KnightOutpostBonus:   15,

		MobilityUnit: [7]int32{
			// NoPiece, Pawn, Bishop, Knight, Rook, Queen, King
			0, 0, 4, 4, 2, 1, 0,
		},

		KingSafetyRing: [3]int32{0, 6, 2},
	}
}

// Scale multiplies every non-material weight by factor/100, with factor
// clamped to 1-100. Material values (Pawn through Queen) are copied
// unscaled.
func (w Weights) Scale(factor int) Weights {
	if factor < 1 {
		factor = 1
	}
	if factor > 100 {
		factor = 100
	}

	scaled := w
	scaled.BishopPair = scaleTerm(w.BishopPair, factor)
	scaled.DevelopmentBonus = scaleTerm(w.DevelopmentBonus, factor)
	scaled.KingCastledBonus = scaleTerm(w.KingCastledBonus, factor)
	scaled.EarlyQueenMove = scaleTerm(w.EarlyQueenMove, factor)
	scaled.DoubledPawnPenalty = scaleTerm(w.DoubledPawnPenalty, factor)
	scaled.IsolatedPawnPenalty = scaleTerm(w.IsolatedPawnPenalty, factor)
	scaled.PassedPawnBonus = scaleTerm(w.PassedPawnBonus, factor)
	scaled.RookOpenFileBonus = scaleTerm(w.RookOpenFileBonus, factor)
	scaled.RookSeventhRankBonus = scaleTerm(w.RookSeventhRankBonus, factor)
	scaled.KnightOutpostBonus = scaleTerm(w.KnightOutpostBonus, factor)
	for i := range scaled.MobilityUnit {
		scaled.MobilityUnit[i] = scaleTerm(w.MobilityUnit[i], factor)
	}
	for i := range scaled.KingSafetyRing {
		scaled.KingSafetyRing[i] = scaleTerm(w.KingSafetyRing[i], factor)
	}
	return scaled
}

func scaleTerm(v int32, factor int) int32 {
	return int32(int64(v) * int64(factor) / 100)
}

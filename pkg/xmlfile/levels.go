// Package xmlfile loads the engine's two external configuration files,
// levels.xml and eco.xml, via the standard encoding/xml decoder (see
// DESIGN.md for why no third-party XML library from the pack applies).
package xmlfile

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/relkin/chessdbot/pkg/eval"
)

// levelsDoc mirrors the <chessdbot><level/>...</chessdbot> schema.
type levelsDoc struct {
	XMLName xml.Name     `xml:"chessdbot"`
	Levels  []levelEntry `xml:"level"`
}

type levelEntry struct {
	Name   string       `xml:"name,attr"`
	Search searchEntry  `xml:"search"`
	Heur   heuristicXML `xml:"heuristic"`
}

type searchEntry struct {
	MaxDepth   int `xml:"max_depth,attr"`
	MaxSeconds int `xml:"max_seconds,attr"`
}

// heuristicXML carries the weights of eval.Weights as integer attributes,
// except BishopPair, which has no attribute and keeps its DefaultWeights
// value.
type heuristicXML struct {
	PawnVal   int32 `xml:"pawn_val,attr"`
	BishopVal int32 `xml:"bishop_val,attr"`
	KnightVal int32 `xml:"knight_val,attr"`
	RookVal   int32 `xml:"rook_val,attr"`
	QueenVal  int32 `xml:"queen_val,attr"`

	FactorDevelopment int32 `xml:"factor_development,attr"`
	BonusHasCastled   int32 `xml:"bonus_has_castled,attr"`
	BonusEarlyQueen   int32 `xml:"bonus_early_queen_move,attr"`

	BonusDoubledPawn   int32 `xml:"bonus_doubled_pawn,attr"`
	BonusIsolatedPawn  int32 `xml:"bonus_isolated_pawn,attr"`
	BonusPassedPawn    int32 `xml:"bonus_passed_pawn,attr"`
	BonusRookOpenFile  int32 `xml:"bonus_rook_open_file,attr"`
	BonusRook7th       int32 `xml:"bonus_rook_seventh_rank,attr"`
	BonusKnightOutpost int32 `xml:"bonus_knight_on_hole,attr"`

	MobilityBishop int32 `xml:"mobility_bishop,attr"`
	MobilityKnight int32 `xml:"mobility_knight,attr"`
	MobilityRook   int32 `xml:"mobility_rook,attr"`
	MobilityQueen  int32 `xml:"mobility_queen,attr"`

	KingSafetyRing1 int32 `xml:"king_safety_ring1,attr"`
	KingSafetyRing2 int32 `xml:"king_safety_ring2,attr"`
}

// Level is one named difficulty profile: a search budget plus a weight set.
type Level struct {
	Name       string
	MaxDepth   int
	MaxSeconds int
	Weights    eval.Weights
}

// TimeBudget returns a per-move soft budget derived from MaxSeconds, for
// callers that want a single-move time limit rather than a full clock.
func (l Level) TimeBudget() time.Duration {
	return time.Duration(l.MaxSeconds) * time.Second
}

// LoadLevels decodes a levels.xml document into its named profiles.
func LoadLevels(r io.Reader) ([]Level, error) {
	var doc levelsDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("xmlfile: decoding levels document: %w", err)
	}
	if len(doc.Levels) == 0 {
		return nil, fmt.Errorf("xmlfile: levels document has no <level> entries")
	}

	levels := make([]Level, 0, len(doc.Levels))
	for _, e := range doc.Levels {
		if e.Search.MaxDepth < 2 {
			return nil, fmt.Errorf("xmlfile: level %q: max_depth must be at least 2", e.Name)
		}
		if e.Search.MaxSeconds < 1 {
			return nil, fmt.Errorf("xmlfile: level %q: max_seconds must be at least 1", e.Name)
		}
		levels = append(levels, Level{
			Name:       e.Name,
			MaxDepth:   e.Search.MaxDepth,
			MaxSeconds: e.Search.MaxSeconds,
			Weights:    heuristicToWeights(e.Heur),
		})
	}
	return levels, nil
}

// FindLevel returns the named level, or the first loaded level if name is
// empty, matching the teacher source's select_level fallback.
func FindLevel(levels []Level, name string) (Level, error) {
	if name == "" {
		return levels[0], nil
	}
	for _, l := range levels {
		if l.Name == name {
			return l, nil
		}
	}
	return Level{}, fmt.Errorf("xmlfile: no level named %q", name)
}

func heuristicToWeights(h heuristicXML) eval.Weights {
	w := eval.DefaultWeights()
	w.Pawn, w.Bishop, w.Knight, w.Rook, w.Queen = h.PawnVal, h.BishopVal, h.KnightVal, h.RookVal, h.QueenVal
	w.DevelopmentBonus = h.FactorDevelopment
	w.KingCastledBonus = h.BonusHasCastled
	w.EarlyQueenMove = h.BonusEarlyQueen
	w.DoubledPawnPenalty = h.BonusDoubledPawn
	w.IsolatedPawnPenalty = h.BonusIsolatedPawn
	w.PassedPawnBonus = h.BonusPassedPawn
	w.RookOpenFileBonus = h.BonusRookOpenFile
	w.RookSeventhRankBonus = h.BonusRook7th
	w.KnightOutpostBonus = h.BonusKnightOutpost
	w.MobilityUnit[2] = h.MobilityBishop
	w.MobilityUnit[3] = h.MobilityKnight
	w.MobilityUnit[4] = h.MobilityRook
	w.MobilityUnit[5] = h.MobilityQueen
	w.KingSafetyRing[1] = h.KingSafetyRing1
	w.KingSafetyRing[2] = h.KingSafetyRing2
	return w
}

// Scale linearly interpolates each field between a conservative profile (at
// factor=1) and an aggressive profile (at factor=100), with factor clamped
// to 1-100. cmd/chessdbot passes the weights of the first and last loaded
// levels.
func Scale(conservative, aggressive eval.Weights, factor int) eval.Weights {
	if factor < 1 {
		factor = 1
	}
	if factor > 100 {
		factor = 100
	}
	t := int64(factor - 1) // 0..99

	lerp := func(lo, hi int32) int32 {
		return lo + int32(int64(hi-lo)*t/99)
	}

	return eval.Weights{
		Pawn:   lerp(conservative.Pawn, aggressive.Pawn),
		Bishop: lerp(conservative.Bishop, aggressive.Bishop),
		Knight: lerp(conservative.Knight, aggressive.Knight),
		Rook:   lerp(conservative.Rook, aggressive.Rook),
		Queen:  lerp(conservative.Queen, aggressive.Queen),

		BishopPair: lerp(conservative.BishopPair, aggressive.BishopPair),

		DevelopmentBonus: lerp(conservative.DevelopmentBonus, aggressive.DevelopmentBonus),
		KingCastledBonus: lerp(conservative.KingCastledBonus, aggressive.KingCastledBonus),
		EarlyQueenMove:   lerp(conservative.EarlyQueenMove, aggressive.EarlyQueenMove),

		DoubledPawnPenalty:  lerp(conservative.DoubledPawnPenalty, aggressive.DoubledPawnPenalty),
		IsolatedPawnPenalty: lerp(conservative.IsolatedPawnPenalty, aggressive.IsolatedPawnPenalty),
		PassedPawnBonus:     lerp(conservative.PassedPawnBonus, aggressive.PassedPawnBonus),

		RookOpenFileBonus:    lerp(conservative.RookOpenFileBonus, aggressive.RookOpenFileBonus),
		RookSeventhRankBonus: lerp(conservative.RookSeventhRankBonus, aggressive.RookSeventhRankBonus),
		KnightOutpostBonus:   lerp(conservative.KnightOutpostBonus, aggressive.KnightOutpostBonus),

		MobilityUnit: [7]int32{
			0,
			0,
			lerp(conservative.MobilityUnit[2], aggressive.MobilityUnit[2]),
			lerp(conservative.MobilityUnit[3], aggressive.MobilityUnit[3]),
			lerp(conservative.MobilityUnit[4], aggressive.MobilityUnit[4]),
			lerp(conservative.MobilityUnit[5], aggressive.MobilityUnit[5]),
			0,
		},
		KingSafetyRing: [3]int32{
			0,
			lerp(conservative.KingSafetyRing[1], aggressive.KingSafetyRing[1]),
			lerp(conservative.KingSafetyRing[2], aggressive.KingSafetyRing[2]),
		},
	}
}

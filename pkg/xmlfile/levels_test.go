package xmlfile_test

import (
	"strings"
	"testing"

	"github.com/relkin/chessdbot/pkg/eval"
	"github.com/relkin/chessdbot/pkg/xmlfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLevels = `<chessdbot>
  <level name="easy">
    <search max_depth="2" max_seconds="1"/>
    <heuristic pawn_val="100" bishop_val="300" knight_val="300" rook_val="500" queen_val="900"
      factor_development="5" bonus_has_castled="20" bonus_early_queen_move="-5"
      bonus_doubled_pawn="-10" bonus_isolated_pawn="-10" bonus_passed_pawn="10"
      bonus_rook_open_file="10" bonus_rook_seventh_rank="10" bonus_knight_on_hole="10"
      mobility_bishop="2" mobility_knight="2" mobility_rook="1" mobility_queen="1"
      king_safety_ring1="3" king_safety_ring2="1"/>
  </level>
  <level name="hard">
    <search max_depth="8" max_seconds="10"/>
    <heuristic pawn_val="100" bishop_val="330" knight_val="320" rook_val="500" queen_val="900"
      factor_development="10" bonus_has_castled="40" bonus_early_queen_move="-15"
      bonus_doubled_pawn="-20" bonus_isolated_pawn="-15" bonus_passed_pawn="20"
      bonus_rook_open_file="25" bonus_rook_seventh_rank="20" bonus_knight_on_hole="15"
      mobility_bishop="4" mobility_knight="4" mobility_rook="2" mobility_queen="1"
      king_safety_ring1="6" king_safety_ring2="2"/>
  </level>
</chessdbot>`

func TestLoadLevels(t *testing.T) {
	levels, err := xmlfile.LoadLevels(strings.NewReader(sampleLevels))
	require.NoError(t, err)
	require.Len(t, levels, 2)

	easy, err := xmlfile.FindLevel(levels, "easy")
	require.NoError(t, err)
	assert.Equal(t, 2, easy.MaxDepth)
	assert.Equal(t, int32(20), easy.Weights.KingCastledBonus)

	hard, err := xmlfile.FindLevel(levels, "hard")
	require.NoError(t, err)
	assert.Equal(t, 8, hard.MaxDepth)

	_, err = xmlfile.FindLevel(levels, "nonexistent")
	assert.Error(t, err)

	def, err := xmlfile.FindLevel(levels, "")
	require.NoError(t, err)
	assert.Equal(t, "easy", def.Name)
}

func TestLoadLevels_rejectsShallowDepth(t *testing.T) {
	const bad = `<chessdbot><level name="x"><search max_depth="1" max_seconds="1"/><heuristic pawn_val="1" bishop_val="1" knight_val="1" rook_val="1" queen_val="1"/></level></chessdbot>`
	_, err := xmlfile.LoadLevels(strings.NewReader(bad))
	assert.Error(t, err)
}

func TestScale_interpolatesBetweenEndpoints(t *testing.T) {
	lo := eval.Weights{Pawn: 50, BishopPair: 10}
	hi := eval.Weights{Pawn: 150, BishopPair: 30}

	min := xmlfile.Scale(lo, hi, 1)
	assert.Equal(t, int32(50), min.Pawn)

	max := xmlfile.Scale(lo, hi, 100)
	assert.Equal(t, int32(150), max.Pawn)

	mid := xmlfile.Scale(lo, hi, 50)
	assert.Greater(t, int32(mid.Pawn), int32(50))
	assert.Less(t, int32(mid.Pawn), int32(150))
}

package eval_test

import (
	"testing"

	"github.com/relkin/chessdbot/pkg/board"
	"github.com/relkin/chessdbot/pkg/board/fen"
	"github.com/relkin/chessdbot/pkg/eval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_startingPositionIsSymmetric(t *testing.T) {
	zt := board.NewZobristTable(1)
	pos, err := fen.Decode(fen.Initial, zt)
	require.NoError(t, err)

	w := eval.DefaultWeights()
	white := eval.Evaluate(pos, board.White, w)
	black := eval.Evaluate(pos, board.Black, w)
	assert.Equal(t, white, black)
}

func TestEvaluate_extraQueenFavorsOwner(t *testing.T) {
	zt := board.NewZobristTable(2)
	pos, err := fen.Decode("4k3/8/8/8/8/8/3Q4/4K3 w - - 0 1", zt)
	require.NoError(t, err)

	w := eval.DefaultWeights()
	assert.Greater(t, int32(eval.Evaluate(pos, board.White, w)), int32(0))
	assert.Less(t, int32(eval.Evaluate(pos, board.Black, w)), int32(0))
}

func TestWeights_scaleShrinksBonusTerms(t *testing.T) {
	full := eval.DefaultWeights()
	half := full.Scale(50)
	assert.Equal(t, full.Pawn, half.Pawn)
	assert.Less(t, half.BishopPair, full.BishopPair)
}

package search_test

import (
	"context"
	"testing"

	"github.com/relkin/chessdbot/pkg/board"
	"github.com/relkin/chessdbot/pkg/board/fen"
	"github.com/relkin/chessdbot/pkg/eval"
	"github.com/relkin/chessdbot/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNegamax_findsMateInOne(t *testing.T) {
	zt := board.NewZobristTable(42)
	// White rook delivers back-rank mate with Ra8#.
	pos, err := fen.Decode("6k1/5ppp/8/8/8/8/8/R3K3 w - - 0 1", zt)
	require.NoError(t, err)

	h := board.NewHistory(zt, pos)
	n := search.Negamax{ZT: zt, TT: search.NoTranspositionTable{}, Weights: eval.DefaultWeights()}

	quit := make(chan struct{})
	_, score, moves, err := n.Search(context.Background(), h, 2, quit)
	require.NoError(t, err)
	require.NotEmpty(t, moves)
	assert.Equal(t, board.A1, moves[0].From)
	assert.Equal(t, board.A8, moves[0].To)
	assert.Greater(t, int32(score), int32(eval.MaxScore)-2000)
}

// TestNegamax_transpositionTableAgreesWithDisabled checks spec property 8
// (TT-exact replay consistency): at a fixed depth, a TT-backed search and a
// TT-disabled search must agree on the move chosen, since an exact-bound TT
// hit only ever returns a score the disabled search would also have found by
// direct recursion — it never substitutes a worse line.
func TestNegamax_transpositionTableAgreesWithDisabled(t *testing.T) {
	zt := board.NewZobristTable(42)
	pos, err := fen.Decode("r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4", zt)
	require.NoError(t, err)

	weights := eval.DefaultWeights()
	const depth = 3

	withTT := func() (eval.Score, []board.Move) {
		h := board.NewHistory(zt, pos)
		n := search.Negamax{ZT: zt, TT: search.NewTranspositionTable(context.Background(), 1<<20), Weights: weights}
		_, score, moves, err := n.Search(context.Background(), h, depth, make(chan struct{}))
		require.NoError(t, err)
		return score, moves
	}
	withoutTT := func() (eval.Score, []board.Move) {
		h := board.NewHistory(zt, pos)
		n := search.Negamax{ZT: zt, TT: search.NoTranspositionTable{}, Weights: weights}
		_, score, moves, err := n.Search(context.Background(), h, depth, make(chan struct{}))
		require.NoError(t, err)
		return score, moves
	}

	ttScore, ttMoves := withTT()
	noTTScore, noTTMoves := withoutTT()

	require.NotEmpty(t, ttMoves)
	require.NotEmpty(t, noTTMoves)
	assert.Equal(t, noTTScore, ttScore)
	assert.Equal(t, noTTMoves[0], ttMoves[0])
}

func TestTranspositionTable_readsBackWrite(t *testing.T) {
	tt := search.NewTranspositionTable(context.Background(), 1<<20)
	hash := board.ZobristHash(12345)
	move := board.Move{From: board.E2, To: board.E4}

	ok := tt.Write(hash, search.ExactBound, 0, 4, eval.Score(50), move)
	require.True(t, ok)

	bound, depth, score, got, found := tt.Read(hash)
	require.True(t, found)
	assert.Equal(t, search.ExactBound, bound)
	assert.Equal(t, 4, depth)
	assert.Equal(t, eval.Score(50), score)
	assert.Equal(t, move, got)
}

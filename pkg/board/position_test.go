package board_test

import (
	"testing"

	"github.com/relkin/chessdbot/pkg/board"
	"github.com/relkin/chessdbot/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPosition_rejectsAdjacentKings(t *testing.T) {
	zt := board.NewZobristTable(1)
	_, err := board.NewPosition([]board.Placement{
		{Square: board.E1, Color: board.White, Piece: board.King},
		{Square: board.E2, Color: board.Black, Piece: board.King},
	}, board.ZeroCastling, false, 0, board.White, 0, 1, zt)
	assert.Error(t, err)
}

func TestMakeUnmake_hashRoundTrips(t *testing.T) {
	zt := board.NewZobristTable(7)
	pos, err := fen.Decode(fen.Initial, zt)
	require.NoError(t, err)

	h := board.NewHistory(zt, pos)
	before := pos.Hash()
	require.Equal(t, zt.Hash(pos), before)

	moves := []board.Move{
		{From: board.E2, To: board.E4},
		{From: board.E7, To: board.E5},
		{From: board.G1, To: board.F3},
	}
	for _, m := range moves {
		require.True(t, h.TryMake(m))
		assert.Equal(t, zt.Hash(h.Position()), h.Position().Hash())
	}
	for range moves {
		h.Unmake()
	}
	assert.Equal(t, before, h.Position().Hash())
	assert.Equal(t, fen.Initial, fen.Encode(h.Position()))
}

func TestMake_castlingMovesRookAndClearsRights(t *testing.T) {
	zt := board.NewZobristTable(3)
	pos, err := fen.Decode("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", zt)
	require.NoError(t, err)

	h := board.NewHistory(zt, pos)
	require.True(t, h.TryMake(board.Move{From: board.E1, To: board.G1}))

	_, piece, ok := pos.Square(board.F1)
	require.True(t, ok)
	assert.Equal(t, board.Rook, piece)
	assert.True(t, pos.IsEmpty(board.H1))
	assert.True(t, pos.HasCastled(board.White))
	assert.False(t, pos.Castling().IsAllowed(board.WhiteKingSideCastle))
	assert.False(t, pos.Castling().IsAllowed(board.WhiteQueenSideCastle))
}

func TestMake_capturingRookOnHomeSquareClearsItsRight(t *testing.T) {
	zt := board.NewZobristTable(15)
	pos, err := fen.Decode("r3k3/8/8/8/4B3/8/8/4K3 w q - 0 1", zt)
	require.NoError(t, err)

	h := board.NewHistory(zt, pos)
	require.True(t, h.TryMake(board.Move{From: board.E4, To: board.A8}))

	assert.False(t, pos.Castling().IsAllowed(board.BlackQueenSideCastle))
	assert.Equal(t, zt.Hash(pos), pos.Hash())
}

func TestMake_enPassantCaptureRemovesPawn(t *testing.T) {
	zt := board.NewZobristTable(9)
	pos, err := fen.Decode("rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3", zt)
	require.NoError(t, err)

	h := board.NewHistory(zt, pos)
	require.True(t, h.TryMake(board.Move{From: board.E5, To: board.D6}))

	assert.True(t, pos.IsEmpty(board.D5))
	_, piece, ok := pos.Square(board.D6)
	require.True(t, ok)
	assert.Equal(t, board.Pawn, piece)
}

func TestMake_promotionReplacesKind(t *testing.T) {
	zt := board.NewZobristTable(11)
	pos, err := fen.Decode("8/P6k/8/8/8/8/7p/7K w - - 0 1", zt)
	require.NoError(t, err)

	h := board.NewHistory(zt, pos)
	require.True(t, h.TryMake(board.Move{From: board.A7, To: board.A8, Promotion: board.Queen}))

	_, piece, ok := pos.Square(board.A8)
	require.True(t, ok)
	assert.Equal(t, board.Queen, piece)
	assert.Equal(t, board.EmptyBitboard, pos.PieceBitboard(board.White, board.Pawn))
}

func TestTryMake_rejectsMoveThatLeavesKingInCheck(t *testing.T) {
	zt := board.NewZobristTable(13)
	pos, err := fen.Decode("4k3/8/8/8/8/8/4r3/4K3 w - - 0 1", zt)
	require.NoError(t, err)

	h := board.NewHistory(zt, pos)
	assert.False(t, h.TryMake(board.Move{From: board.E1, To: board.F2}))
	assert.Equal(t, board.E1, pos.PieceBitboard(board.White, board.King).LastPopSquare())
}

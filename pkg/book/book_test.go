package book_test

import (
	"testing"

	"github.com/relkin/chessdbot/pkg/board"
	"github.com/relkin/chessdbot/pkg/book"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBook_findsKnownLineAndFallsOffBook(t *testing.T) {
	zt := board.NewZobristTable(7)
	lines := []book.Line{
		{"e2e4", "e7e5", "g1f3"},
		{"e2e4", "c7c5"},
		{"d2d4", "d7d5"},
	}

	b, err := book.New(lines, zt, 1)
	require.NoError(t, err)

	pos, err := board.NewPosition(startingPlacement(), board.FullCastlingRights, false, 0, board.White, 0, 1, zt)
	require.NoError(t, err)
	h := board.NewHistory(zt, pos)

	m, ok := b.Find(h)
	require.True(t, ok)
	assert.Contains(t, []string{"e2e4", "d2d4"}, m.String())

	require.True(t, h.TryMake(mustMove(t, "e2e4")))

	m, ok = b.Find(h)
	require.True(t, ok)
	assert.Contains(t, []string{"e7e5", "c7c5"}, m.String())

	require.True(t, h.TryMake(mustMove(t, "e7e5")))
	m, ok = b.Find(h)
	require.True(t, ok)
	assert.Equal(t, "g1f3", m.String())

	require.True(t, h.TryMake(m))
	_, ok = b.Find(h)
	assert.False(t, ok)
}

func TestBook_rejectsIllegalLine(t *testing.T) {
	zt := board.NewZobristTable(7)
	_, err := book.New([]book.Line{{"e2e5"}}, zt, 1)
	assert.Error(t, err)
}

func mustMove(t *testing.T, s string) board.Move {
	t.Helper()
	m, err := board.ParseMove(s)
	require.NoError(t, err)
	return m
}

func startingPlacement() []board.Placement {
	back := [8]board.Piece{board.Rook, board.Knight, board.Bishop, board.Queen, board.King, board.Bishop, board.Knight, board.Rook}

	var pieces []board.Placement
	for f := board.ZeroFile; f < board.NumFiles; f++ {
		pieces = append(pieces,
			board.Placement{Square: board.NewSquare(f, board.Rank1), Color: board.White, Piece: back[int(board.NumFiles)-1-int(f)]},
			board.Placement{Square: board.NewSquare(f, board.Rank2), Color: board.White, Piece: board.Pawn},
			board.Placement{Square: board.NewSquare(f, board.Rank7), Color: board.Black, Piece: board.Pawn},
			board.Placement{Square: board.NewSquare(f, board.Rank8), Color: board.Black, Piece: back[int(board.NumFiles)-1-int(f)]},
		)
	}
	return pieces
}

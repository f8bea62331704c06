// Package book implements a random-choice opening book: a tree of moves
// indexed by the actual sequence of moves played from the game's start,
// rather than by position hash. This lets two different transpositions
// into the "same" position still be treated as distinct book lines, which
// matches how the lines were originally recorded (in SAN move order, not
// by FEN).
package book

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/relkin/chessdbot/pkg/board"
)

// Line is a single recorded opening line, e.g. "e2e4 e7e5 g1f3".
type Line []string

func (l Line) String() string {
	return strings.Join(l, " ")
}

// node is one ply in the book tree. The root node's Move is the zero move.
type node struct {
	move     board.Move
	children []*node
}

// Book is an opening book tree. Find never mutates the tree, but it draws
// from the Book's own rand.Rand, which is not synchronized, so concurrent
// Find calls on one Book need external guarding.
type Book struct {
	root *node
	rand *rand.Rand
}

// New builds a book from a set of opening lines, replaying each one from
// the standard starting position to validate legality, and inserting its
// moves along the played path from the root.
func New(lines []Line, zt *board.ZobristTable, seed int64) (*Book, error) {
	b := &Book{root: &node{}, rand: rand.New(rand.NewSource(seed))}

	for _, line := range lines {
		pos, err := initialPosition(zt)
		if err != nil {
			return nil, err
		}
		h := board.NewHistory(zt, pos)
		cur := b.root

		for _, str := range line {
			m, err := board.ParseMove(str)
			if err != nil {
				return nil, fmt.Errorf("book: invalid move %q in line %q: %w", str, line, err)
			}

			matched := false
			for _, candidate := range board.GenerateMoves(h.Position(), false) {
				if !candidate.Equals(m) {
					continue
				}
				if !h.TryMake(candidate) {
					return nil, fmt.Errorf("book: illegal move %q in line %q", str, line)
				}
				matched = true
				cur = insertChild(cur, m)
				break
			}
			if !matched {
				return nil, fmt.Errorf("book: move %q not found in line %q", str, line)
			}
		}

		// Mark the end of recorded book knowledge for this line with a blank
		// sentinel child (spec.md §4.G; original_source/src/eco.c's
		// SET_BLANK_MOVE/add_opening_move), so that a random pick among cur's
		// children can still land on "no book reply" even when a longer line
		// sharing this prefix contributes further siblings.
		insertBlankChild(cur)
	}
	return b, nil
}

// insertBlankChild appends a zero-value Move child to n, if one isn't
// already present.
func insertBlankChild(n *node) {
	for _, c := range n.children {
		if c.move.IsNone() {
			return
		}
	}
	n.children = append(n.children, &node{})
}

func insertChild(n *node, m board.Move) *node {
	for _, c := range n.children {
		if c.move.Equals(m) {
			return c
		}
	}
	child := &node{move: m}
	n.children = append(n.children, child)
	return child
}

func initialPosition(zt *board.ZobristTable) (*board.Position, error) {
	return board.NewPosition(startingPlacement(), board.FullCastlingRights, false, 0, board.White, 0, 1, zt)
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

// Find walks the tree along the moves already played in h and, if the
// resulting node has children, returns a uniformly random one. The second
// result is false once play has left the book; the caller should stop
// consulting it for the remainder of the game.
func (b *Book) Find(h *board.History) (board.Move, bool) {
	cur := b.root
	for _, played := range h.Moves() {
		next := findChild(cur, played)
		if next == nil {
			return board.Move{}, false
		}
		cur = next
	}
	if len(cur.children) == 0 {
		return board.Move{}, false
	}
	pick := cur.children[b.rand.Intn(len(cur.children))].move
	if pick.IsNone() {
		return board.Move{}, false
	}
	return pick, true
}

func findChild(n *node, m board.Move) *node {
	for _, c := range n.children {
		if c.move.Equals(m) {
			return c
		}
	}
	return nil
}

package search

import (
	"context"
	"fmt"
	"math/bits"
	"sync/atomic"
	"unsafe"

	"github.com/relkin/chessdbot/pkg/board"
	"github.com/relkin/chessdbot/pkg/eval"
	"github.com/seekerror/logw"
)

// Bound represents the bound of a -- possibly inexact -- search score.
type Bound uint8

const (
	ExactBound Bound = iota
	LowerBound // score is a cutoff that failed high against beta
	AlphaBound // score failed low against alpha; true value is <= score
)

func (b Bound) String() string {
	switch b {
	case ExactBound:
		return "Exact"
	case LowerBound:
		return "Lower"
	case AlphaBound:
		return "Alpha"
	default:
		return "?"
	}
}

// TranspositionTable speeds up search by caching previously-searched
// positions, keyed by their Zobrist hash. Must be thread-safe: a search
// goroutine and the coordinator's bookkeeping may both touch it.
type TranspositionTable interface {
	Read(hash board.ZobristHash) (Bound, int, eval.Score, board.Move, bool)
	Write(hash board.ZobristHash, bound Bound, ply, depth int, score eval.Score, move board.Move) bool

	Size() uint64
	Used() float64
}

// metadata captures node metadata: bound, best move, ply and depth.
type metadata struct {
	bound      Bound
	from, to   board.Square
	promotion  board.Piece
	ply, depth uint16
}

// node is one transposition-table slot.
type node struct {
	hash  board.ZobristHash
	score eval.Score
	md    metadata
}

// table is a direct-mapped, always-replace transposition table (spec.md §3,
// §4.E: "store(...): always replace slot hash mod H"). Entries are swapped
// in lock-free via an atomic pointer per slot, so concurrent readers never
// observe a torn write.
type table struct {
	table []*node
	mask  uint64
	used  uint64
}

// NewTranspositionTable allocates a table of the given size in bytes,
// rounded down to the nearest power-of-two entry count.
func NewTranspositionTable(ctx context.Context, size uint64) TranspositionTable {
	n := uint64(1 << (63 - 5 - bits.LeadingZeros64(size)))

	logw.Infof(ctx, "Allocating %vMB transposition table with %v entries", size>>20, n)

	return &table{
		table: make([]*node, n),
		mask:  n - 1,
	}
}

func (t *table) Size() uint64 {
	return uint64(len(t.table)) << 5
}

func (t *table) Used() float64 {
	return float64(t.used) / float64(len(t.table))
}

func (t *table) Read(hash board.ZobristHash) (Bound, int, eval.Score, board.Move, bool) {
	key := uint64(hash) & t.mask
	addr := (*unsafe.Pointer)(unsafe.Pointer(&t.table[key]))

	ptr := (*node)(atomic.LoadPointer(addr))
	if ptr != nil && hash == ptr.hash {
		bestmove := board.Move{From: ptr.md.from, To: ptr.md.to, Promotion: ptr.md.promotion}
		return ptr.md.bound, int(ptr.md.depth), ptr.score, bestmove, true
	}
	return 0, 0, 0, board.Move{}, false
}

func (t *table) Write(hash board.ZobristHash, bound Bound, ply, depth int, score eval.Score, move board.Move) bool {
	key := uint64(hash) & t.mask
	addr := (*unsafe.Pointer)(unsafe.Pointer(&t.table[key]))

	fresh := &node{
		hash:  hash,
		score: score,
		md: metadata{
			bound:     bound,
			from:      move.From,
			to:        move.To,
			promotion: move.Promotion,
			ply:       uint16(ply),
			depth:     uint16(depth),
		},
	}

	ptr := (*node)(atomic.LoadPointer(addr))
	for {
		if atomic.CompareAndSwapPointer(addr, unsafe.Pointer(ptr), unsafe.Pointer(fresh)) {
			if ptr == nil {
				t.used++
			}
			return true
		}
		ptr = (*node)(atomic.LoadPointer(addr))
	}
}

func (t *table) String() string {
	return fmt.Sprintf("TT[%v @ %v%%]", t.Size(), int(100*t.Used()))
}

// NoTranspositionTable is a no-op implementation, useful for perft and tests
// that want to exercise search without cache effects.
type NoTranspositionTable struct{}

func (NoTranspositionTable) Read(hash board.ZobristHash) (Bound, int, eval.Score, board.Move, bool) {
	return 0, 0, 0, board.Move{}, false
}

func (NoTranspositionTable) Write(hash board.ZobristHash, bound Bound, ply, depth int, score eval.Score, move board.Move) bool {
	return false
}

func (NoTranspositionTable) Size() uint64 { return 0 }
func (NoTranspositionTable) Used() float64 { return 0 }

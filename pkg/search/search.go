// Package search implements iterative-deepening negamax search with
// alpha-beta pruning over a Zobrist-keyed transposition table.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/relkin/chessdbot/pkg/board"
	"github.com/relkin/chessdbot/pkg/eval"
)

// ErrHalted indicates the search was stopped by Handle.Halt before
// completing the requested depth.
var ErrHalted = errors.New("search halted")

// PV is the principal variation found by one iteration of the search.
type PV struct {
	Depth int
	Score eval.Score
	Moves []board.Move
	Nodes uint64
	Time  time.Duration
}

func (p PV) String() string {
	return fmt.Sprintf("depth=%v score=%v nodes=%v time=%v pv=%v", p.Depth, p.Score, p.Nodes, p.Time, p.Moves)
}

// BestMove returns the first move of the principal variation, if any.
func (p PV) BestMove() (board.Move, bool) {
	if len(p.Moves) == 0 {
		return board.Move{}, false
	}
	return p.Moves[0], true
}

// Searcher searches the game tree rooted at h's current position to a fixed
// ply depth. Implementations must be safe to call repeatedly against the
// same *board.History, deepening one ply at a time.
type Searcher interface {
	Search(ctx context.Context, h *board.History, depth int, quit <-chan struct{}) (uint64, eval.Score, []board.Move, error)
}

// Options control a single iterative-deepening run.
type Options struct {
	DepthLimit  int // 0 == no limit
	TimeControl TimeControl
	UseTime     bool

	// FixedMove, if positive, overrides TimeControl: the soft limit is
	// FixedMove and the hard limit is 2*FixedMove. This is how the CECP
	// "st N" command (a flat per-move alarm) is expressed, as opposed to
	// "level MPS BASE INC", which derives its budget from the remaining
	// clock via TimeControl.Limits.
	FixedMove time.Duration
}

// Launcher starts an iterative-deepening search against a dedicated
// *board.History, owned exclusively by the search goroutine until Halt.
type Launcher interface {
	Launch(ctx context.Context, h *board.History, opt Options) (Handle, <-chan PV)
}

// Handle lets the caller stop an in-flight search and retrieve its last
// completed principal variation.
type Handle interface {
	Halt() PV
}

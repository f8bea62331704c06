package search

import (
	"context"

	"github.com/relkin/chessdbot/pkg/board"
	"github.com/relkin/chessdbot/pkg/eval"
)

// Negamax implements iterative-deepening-friendly negamax search with
// alpha-beta pruning, transposition-table memoization and MVV/LVA move
// ordering. Pseudo-code:
//
//	function negamax(node, depth, α, β, color) is
//	    if depth = 0 or node is terminal then
//	        return color × the heuristic value of node
//	    value := −∞
//	    for each child of node do
//	        value := max(value, −negamax(child, depth − 1, −β, −α, −color))
//	        α := max(α, value)
//	        if α ≥ β then
//	            break (* β cutoff *)
//	    return value
//
// See: https://en.wikipedia.org/wiki/Negamax.
type Negamax struct {
	ZT      *board.ZobristTable
	TT      TranspositionTable
	Weights eval.Weights
}

// drawScore is the terminal override for stalemate, threefold repetition,
// fifty-move and insufficient-material nodes: spec.md §4.D/§4.F calls for
// "a draw score equal to −MAX from the side-to-move's perspective", so the
// engine always prefers a non-drawing line over one that repeats or
// liquidates into a dead position, exactly as in
// original_source/src/search.c's STALE_MATE/REPETITION/FIFTY_MOVES/
// TWO_KINGS handling (m.eval = -MAX_HEU). It sits just outside the
// mate-distance decode window (see mateDistance in iterative.go) so a draw
// is never mistaken for a forced mate. A drawn node is scored from the
// perspective of its own side to move, the opponent of the player who just
// moved into the draw, so it returns the negation of drawScore; the move
// that reaches the draw then scores drawScore for the mover.
const drawScore = eval.MinScore + mateDistanceThreshold

func (n Negamax) Search(ctx context.Context, h *board.History, depth int, quit <-chan struct{}) (uint64, eval.Score, []board.Move, error) {
	run := &run{zt: n.ZT, tt: n.TT, w: n.Weights, h: h, quit: quit}
	score, moves := run.search(0, depth, eval.NegInf, eval.Inf)
	if isClosed(quit) {
		return run.nodes, 0, nil, ErrHalted
	}
	return run.nodes, score, moves, nil
}

type run struct {
	zt    *board.ZobristTable
	tt    TranspositionTable
	w     eval.Weights
	h     *board.History
	nodes uint64
	quit  <-chan struct{}
}

// search returns the score and principal variation from the perspective of
// the side to move at this node. ply is the distance from the search root,
// used to prefer faster mates; depth is the remaining search depth.
func (r *run) search(ply, depth int, alpha, beta eval.Score) (eval.Score, []board.Move) {
	if isClosed(r.quit) {
		return 0, nil
	}

	pos := r.h.Position()
	if ply > 0 && (r.h.IsThreefoldRepetition() || r.h.IsFiftyMoveRule() || r.h.IsInsufficientMaterial()) {
		return drawScore.Negate(), nil
	}

	if depth == 0 {
		r.nodes++
		return eval.Evaluate(pos, pos.Side(), r.w), nil
	}

	origAlpha := alpha

	hash := pos.Hash()
	var hashMove board.Move
	if bound, storedDepth, score, move, ok := r.tt.Read(hash); ok {
		hashMove = move
		if storedDepth >= depth {
			switch {
			case bound == ExactBound:
				return score, []board.Move{move}
			case bound == LowerBound && score >= beta:
				return score, []board.Move{move}
			case bound == AlphaBound && score <= alpha:
				return score, []board.Move{move}
			}
		}
	}

	r.nodes++

	moves := board.GenerateMoves(pos, false)
	list := board.NewMoveList(moves, board.First(hashMove, func(m board.Move) board.MovePriority {
		return board.MovePriority(m.Eval)
	}))

	best := eval.NegInf
	var bestMove board.Move
	var pv []board.Move
	hasLegal := false

	for {
		m, ok := list.Next()
		if !ok {
			break
		}
		if !r.h.TryMake(m) {
			continue
		}
		hasLegal = true

		score, rem := r.search(ply+1, depth-1, beta.Negate(), alpha.Negate())
		score = score.Negate()
		r.h.Unmake()

		if score > best {
			best = score
			bestMove = m
			pv = append([]board.Move{m}, rem...)
		}
		if best > alpha {
			alpha = best
		}
		if alpha >= beta {
			break
		}
	}

	if !hasLegal {
		if pos.IsChecked(pos.Side()) {
			return eval.MinScore + eval.Score(ply), nil
		}
		return drawScore.Negate(), nil // stalemate
	}

	bound := ExactBound
	switch {
	case best >= beta:
		bound = LowerBound
	case best <= origAlpha:
		bound = AlphaBound
	}
	r.tt.Write(hash, bound, ply, depth, best, bestMove)

	return best, pv
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

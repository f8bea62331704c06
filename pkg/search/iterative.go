package search

import (
	"context"
	"sync"
	"time"

	"github.com/relkin/chessdbot/pkg/board"
	"github.com/relkin/chessdbot/pkg/eval"
	"github.com/seekerror/logw"
	"go.uber.org/atomic"
)

// Iterative deepens a Searcher one ply at a time, publishing a PV after
// each completed iteration until Halt is called, the depth limit is
// reached, a forced mate is found within the searched width, or the soft
// time limit elapses.
type Iterative struct {
	Search Searcher
}

func (it *Iterative) Launch(ctx context.Context, h *board.History, opt Options) (Handle, <-chan PV) {
	out := make(chan PV, 1)
	hd := &handle{init: make(chan struct{}), quit: make(chan struct{})}
	go hd.process(ctx, it.Search, h, opt, out)
	return hd, out
}

type handle struct {
	init, quit        chan struct{}
	initialized, done atomic.Bool

	pv PV
	mu sync.Mutex
}

func (h *handle) process(ctx context.Context, s Searcher, hist *board.History, opt Options, out chan PV) {
	defer h.markInitialized()
	defer close(out)

	timed := opt.FixedMove > 0 || opt.UseTime

	var soft, hard time.Duration
	switch {
	case opt.FixedMove > 0:
		soft, hard = opt.FixedMove, 2*opt.FixedMove
	case opt.UseTime:
		soft, hard = opt.TimeControl.Limits(hist.Position().Side())
	}
	if timed {
		time.AfterFunc(hard, func() {
			h.Halt()
		})
	}

	depth := 1
	for !h.done.Load() {
		start := time.Now()

		nodes, score, moves, err := s.Search(ctx, hist, depth, h.quit)
		if err != nil {
			if err == ErrHalted {
				return
			}
			logw.Errorf(ctx, "search failed at depth=%v: %v", depth, err)
			return
		}

		pv := PV{Depth: depth, Score: score, Moves: moves, Nodes: nodes, Time: time.Since(start)}
		logw.Debugf(ctx, "searched depth=%v: %v", depth, pv)

		h.mu.Lock()
		h.pv = pv
		h.mu.Unlock()

		select {
		case <-out:
		default:
		}
		out <- pv

		h.markInitialized()

		if opt.DepthLimit > 0 && depth >= opt.DepthLimit {
			return
		}
		if md, ok := mateDistance(score); ok && md <= depth {
			return // forced mate found within the searched width
		}
		if timed && soft < time.Since(start) {
			return // exceeded the soft limit; don't start a deeper iteration
		}
		depth++
	}
}

func (h *handle) Halt() PV {
	<-h.init
	if h.done.CAS(false, true) {
		close(h.quit)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pv
}

func (h *handle) markInitialized() {
	if h.initialized.CAS(false, true) {
		close(h.init)
	}
}

// mateDistanceThreshold bounds how close to the mate sentinels a score must
// be to be interpreted as an encoded forced mate rather than a (much
// smaller in magnitude) ordinary evaluation.
const mateDistanceThreshold = 1000

// mateDistance reports the ply distance to a forced mate encoded in score,
// if any (see run.search's checkmate leaf encoding).
func mateDistance(s eval.Score) (int, bool) {
	if d := s - eval.MinScore; d >= 0 && d < mateDistanceThreshold {
		return int(d), true
	}
	if d := eval.MaxScore - s; d >= 0 && d < mateDistanceThreshold {
		return int(d), true
	}
	return 0, false
}

// Package engine is the coordinator (component H): it owns the position
// history, transposition table, opening book and evaluation weights, and
// drives the search worker through a small status state machine shared
// with the I/O worker (the CECP driver in pkg/engine/cecp).
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/relkin/chessdbot/pkg/board"
	"github.com/relkin/chessdbot/pkg/board/fen"
	"github.com/relkin/chessdbot/pkg/book"
	"github.com/relkin/chessdbot/pkg/eval"
	"github.com/relkin/chessdbot/pkg/search"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
)

var version = build.NewVersion(0, 1, 0)

// Status is the coordinator's game-state machine. The I/O worker mutates it
// under mu and signals cond; the search worker blocks on cond until it sees
// SEARCH or QUIT.
type Status int32

const (
	NOP Status = iota
	FORCE
	SEARCH
	PONDER
	QUIT
)

func (s Status) String() string {
	switch s {
	case NOP:
		return "NOP"
	case FORCE:
		return "FORCE"
	case SEARCH:
		return "SEARCH"
	case PONDER:
		return "PONDER"
	case QUIT:
		return "QUIT"
	default:
		return "?"
	}
}

// Outcome reports what happened after a go/usermove-triggered search.
type Outcome struct {
	Move     board.Move
	PV       search.PV
	FromBook bool
}

// Engine is the coordinator. Exported methods are safe for concurrent use
// by the CECP I/O worker; the search worker runs internally in run().
type Engine struct {
	name, author string

	mu     sync.Mutex
	cond   *sync.Cond
	status Status

	zt       *board.ZobristTable
	h        *board.History
	tt       search.TranspositionTable
	weights  eval.Weights
	launcher search.Launcher

	bk          *book.Book
	bookEnabled bool

	maxDepth int
	perMove  time.Duration // "st N": flat per-move budget
	clock    search.TimeControl
	useClock bool

	active search.Handle

	timeoutMu sync.Mutex
	timeout   bool

	onMove func(Outcome) // invoked by the search worker when a move is decided
}

// New creates a coordinator at the standard starting position.
func New(ctx context.Context, name, author string, zt *board.ZobristTable, tt search.TranspositionTable, weights eval.Weights, bk *book.Book, maxDepth int, onMove func(Outcome)) *Engine {
	e := &Engine{
		name:     name,
		author:   author,
		zt:       zt,
		tt:       tt,
		weights:  weights,
		launcher: &search.Iterative{Search: search.Negamax{ZT: zt, TT: tt, Weights: weights}},
		bk:       bk,
		maxDepth: maxDepth,
		onMove:   onMove,
	}
	e.cond = sync.NewCond(&e.mu)

	pos, err := fen.Decode(fen.Initial, zt)
	if err != nil {
		logw.Exitf(ctx, "engine: decoding initial position: %v", err)
	}
	e.h = board.NewHistory(zt, pos)
	e.bookEnabled = bk != nil

	go e.run(ctx)
	return e
}

// Name returns the engine name and version, for CECP's "myname" feature.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

func (e *Engine) Author() string {
	return e.author
}

// Status returns the current coordinator status.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// FEN renders the current position.
func (e *Engine) FEN() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fen.Encode(e.h.Position())
}

// Side returns the side to move.
func (e *Engine) Side() board.Color {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.h.Position().Side()
}

// NewGame resets history to the standard starting position and clears status to
// NOP, per the CECP "new" command.
func (e *Engine) NewGame(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.haltActiveLocked()

	pos, _ := fen.Decode(fen.Initial, e.zt)
	e.h = board.NewHistory(e.zt, pos)
	e.status = NOP
	e.bookEnabled = e.bk != nil
	logw.Infof(ctx, "new game")
}

// SetBoard replaces the position from FEN and, per spec.md, disables the
// opening book for the remainder of the game (the move-path it walks was
// just discarded).
func (e *Engine) SetBoard(ctx context.Context, position string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pos, err := fen.Decode(position, e.zt)
	if err != nil {
		return fmt.Errorf("invalid FEN: %w", err)
	}

	e.haltActiveLocked()
	e.h = board.NewHistory(e.zt, pos)
	e.bookEnabled = false
	logw.Infof(ctx, "setboard %v", position)
	return nil
}

// Force sets status to FORCE: the engine stops initiating moves but keeps
// applying user moves to history.
func (e *Engine) Force() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.haltActiveLocked()
	e.status = FORCE
	e.cond.Broadcast()
}

// PlayOther sets status to NOP (CECP "playother").
func (e *Engine) PlayOther() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = NOP
	e.cond.Broadcast()
}

// Quit asks the search worker to exit.
func (e *Engine) Quit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.haltActiveLocked()
	e.status = QUIT
	e.cond.Broadcast()
}

// SetDepthLimit implements "sd N": a fixed depth ceiling, effective when N>=2.
func (e *Engine) SetDepthLimit(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n >= 2 {
		e.maxDepth = n
	}
}

// SetFixedSeconds implements "st N": a flat per-move alarm.
func (e *Engine) SetFixedSeconds(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.perMove = time.Duration(n) * time.Second
	e.useClock = false
}

// SetLevel implements "level MPS BASE INC". The candidate per-move budget is
// the soft limit that a clock of BASE over MPS moves gives White, plus INC.
// If neither a clock nor "st" seconds is set, the new clock is taken
// unconditionally; otherwise it replaces the current setting only if the
// candidate is below the current budget (the current clock's soft limit, or
// the "st" seconds). INC is used only in that comparison: the stored clock
// does not keep it.
func (e *Engine) SetLevel(mps int, base, inc time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	newClock := search.TimeControl{White: base, Black: base, Moves: mps}
	soft, _ := newClock.Limits(board.White)
	newPerMove := soft + inc

	if e.perMove == 0 && !e.useClock {
		e.clock = newClock
		e.useClock = true
		e.perMove = 0
		return
	}

	var current time.Duration
	if e.useClock {
		current, _ = e.clock.Limits(board.White)
	} else {
		current = e.perMove
	}
	if newPerMove < current {
		e.clock = newClock
		e.useClock = true
		e.perMove = 0
	}
}

// UserMove parses and applies an opponent move. If status is not FORCE, it
// also kicks off a search for the engine's reply.
func (e *Engine) UserMove(ctx context.Context, coord string) error {
	m, err := board.ParseMove(coord)
	if err != nil {
		return fmt.Errorf("illegal move: %w", err)
	}

	e.mu.Lock()
	matched := false
	for _, cand := range board.GenerateMoves(e.h.Position(), false) {
		if cand.Equals(m) {
			matched = true
			m = cand
			break
		}
	}
	if !matched || !e.h.TryMake(m) {
		e.mu.Unlock()
		return fmt.Errorf("illegal move: %v", coord)
	}
	logw.Infof(ctx, "usermove %v", m)

	shouldSearch := e.status != FORCE
	if shouldSearch {
		e.status = SEARCH
		e.cond.Broadcast()
	}
	e.mu.Unlock()
	return nil
}

// Go sets status to SEARCH so the engine moves immediately for the side to
// move, per CECP "go".
func (e *Engine) Go() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = SEARCH
	e.cond.Broadcast()
}

// Undo unmakes one ply.
func (e *Engine) Undo() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.h.Len() == 0 {
		return fmt.Errorf("no move to undo")
	}
	e.haltActiveLocked()
	e.h.Unmake()
	return nil
}

// Remove unmakes two plies (one full move), per CECP "remove".
func (e *Engine) Remove() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.h.Len() < 2 {
		return fmt.Errorf("no move to remove")
	}
	e.haltActiveLocked()
	e.h.Unmake()
	e.h.Unmake()
	return nil
}

// Interrupt implements "?": it forces the timeout flag, which the in-flight
// search worker observes and halts at the next node boundary, emitting
// whatever move the last completed iteration found (or none).
func (e *Engine) Interrupt() {
	e.timeoutMu.Lock()
	e.timeout = true
	e.timeoutMu.Unlock()

	e.mu.Lock()
	e.haltActiveLocked()
	e.mu.Unlock()
}

// EvaluateDraw reports whether the current position should be offered as a
// draw ("draw" command): insufficient material, threefold repetition, or
// the fifty-move rule.
func (e *Engine) EvaluateDraw() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	h := e.h
	return h.IsInsufficientMaterial() || h.IsThreefoldRepetition() || h.IsFiftyMoveRule()
}

// GameOverText reports the game-over message to emit after a move, if any.
func (e *Engine) GameOverText() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gameOverText(e.h)
}

func gameOverText(h *board.History) (string, bool) {
	pos := h.Position()
	if board.IsCheckmate(h) {
		if pos.Side() == board.White {
			return "0-1 {Black has won by checkmate}", true
		}
		return "1-0 {White has won by checkmate}", true
	}
	if board.IsStalemate(h) {
		return "1/2-1/2 {Stalemate}", true
	}
	if h.IsThreefoldRepetition() {
		return "1/2-1/2 {Draw by three fold repetition rule}", true
	}
	if h.IsFiftyMoveRule() {
		return "1/2-1/2 {Draw by 50 movements rule}", true
	}
	if h.IsInsufficientMaterial() {
		return "1/2-1/2 {Draw by lack of material}", true
	}
	return "", false
}

// haltActiveLocked stops any in-flight search. Caller holds mu.
func (e *Engine) haltActiveLocked() {
	if e.active != nil {
		e.active.Halt()
		e.active = nil
	}
}

// run is the search worker: it blocks on cond until status is SEARCH or
// QUIT, runs one search (book or engine), applies the resulting move, and
// reports it via onMove.
func (e *Engine) run(ctx context.Context) {
	for {
		e.mu.Lock()
		for e.status != SEARCH && e.status != QUIT {
			e.cond.Wait()
		}
		if e.status == QUIT {
			e.mu.Unlock()
			return
		}
		e.mu.Unlock()

		e.searchAndApply(ctx)
	}
}

func (e *Engine) searchAndApply(ctx context.Context) {
	e.mu.Lock()
	if bm, ok := e.bookMoveLocked(); ok {
		e.h.Make(bm)
		e.status = NOP
		cb := e.onMove
		e.mu.Unlock()
		if cb != nil {
			cb(Outcome{Move: bm, FromBook: true})
		}
		return
	}

	opt := search.Options{DepthLimit: e.maxDepth}
	if e.perMove > 0 {
		opt.FixedMove = e.perMove
	} else if e.useClock {
		opt.TimeControl = e.clock
		opt.UseTime = true
	}
	h := e.h
	e.mu.Unlock()

	handle, out := e.launcher.Launch(ctx, h, opt)

	e.mu.Lock()
	e.active = handle
	e.mu.Unlock()

	var last search.PV
	for pv := range out {
		last = pv
	}

	e.mu.Lock()
	e.active = nil
	mv, ok := last.BestMove()
	if ok {
		e.h.Make(mv)
	}
	e.status = NOP
	cb := e.onMove
	e.mu.Unlock()

	e.timeoutMu.Lock()
	e.timeout = false
	e.timeoutMu.Unlock()

	if cb != nil {
		cb(Outcome{Move: mv, PV: last})
	}
}

// TimedOut reports whether the timeout flag is set. "?" (Interrupt) sets it,
// and it is cleared when the in-flight search finishes; the wall-clock alarm
// halts the search directly and does not set it.
func (e *Engine) TimedOut() bool {
	e.timeoutMu.Lock()
	defer e.timeoutMu.Unlock()
	return e.timeout
}

// bookMoveLocked consults the opening book, if enabled. Caller holds mu.
func (e *Engine) bookMoveLocked() (board.Move, bool) {
	if !e.bookEnabled || e.bk == nil {
		return board.Move{}, false
	}
	return e.bk.Find(e.h)
}

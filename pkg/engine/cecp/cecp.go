// Package cecp implements a CECP/XBoard protocol driver for the engine.
//
// See: https://www.gnu.org/software/xboard/engine-intf.html
package cecp

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/relkin/chessdbot/pkg/engine"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

const ProtocolName = "cecp"

// noOps are commands that are always accepted for correctness but require
// no action from this engine.
var noOps = map[string]bool{
	"hard": true, "easy": true, "post": true, "nopost": true, "analyze": true,
	"name": true, "rating": true, "ics": true, "computer": true, "random": true,
	"edit": true, "hint": true, "bk": true, "result": true, "white": true,
	"black": true, "time": true, "otim": true, "pause": true, "resume": true,
}

// Driver implements a CECP driver for an engine, activated by "xboard". The
// protocol is handled by two concurrent sources feeding the same process
// loop: GUI input lines, and Outcome values the engine's search worker
// publishes asynchronously whenever a move (book or searched) is decided.
type Driver struct {
	iox.AsyncCloser

	e   *engine.Engine
	out chan<- string
}

// NewDriver starts the driver's I/O worker, reading commands from in and
// move outcomes from moves, and writing protocol responses to the returned
// channel. moves is typically fed by the onMove callback passed to
// engine.New.
func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string, moves <-chan engine.Outcome) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		AsyncCloser: iox.NewAsyncCloser(),
		e:           e,
		out:         out,
	}
	go d.process(ctx, in, moves)
	return d, out
}

func (d *Driver) process(ctx context.Context, in <-chan string, moves <-chan engine.Outcome) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "CECP protocol initialized")

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}
			if d.dispatch(ctx, line) {
				return
			}

		case o, ok := <-moves:
			if !ok {
				continue
			}
			d.reportMove(o)

		case <-d.Closed():
			d.e.Quit()
			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

// reportMove emits the "move <coord>" line and, if the game has ended, the
// CECP result line.
func (d *Driver) reportMove(o engine.Outcome) {
	if !o.Move.IsNone() {
		d.out <- fmt.Sprintf("move %v", o.Move)
	}
	if text, ok := d.e.GameOverText(); ok {
		d.out <- text
	}
}

// dispatch handles one input line and reports whether the driver should
// shut down ("quit").
func (d *Driver) dispatch(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd, args := parts[0], parts[1:]

	if noOps[cmd] {
		return false
	}

	switch cmd {
	case "xboard":
		// Quiesce any prompt; no output.

	case "protover":
		if len(args) > 0 && args[0] == "2" {
			d.out <- "feature ping=1 setboard=1 playother=1 san=0 usermove=1 time=0 draw=1" +
				" sigint=0 sigterm=0 reuse=1 analyze=0 myname=\"" + d.e.Name() + "\"" +
				" variants=\"normal\" colors=0 ics=0 name=1 pause=0 done=1"
		}

	case "accepted":
		// Ignore.

	case "rejected":
		logw.Exitf(ctx, "feature rejected by GUI: %v", args)

	case "new":
		d.e.NewGame(ctx)

	case "variant":
		if len(args) > 0 && args[0] != "normal" {
			d.out <- "Error: only the normal variant is supported"
		}

	case "quit":
		d.e.Quit()
		return true

	case "force":
		d.e.Force()

	case "go":
		d.e.Go()

	case "playother":
		d.e.PlayOther()

	case "level":
		d.cmdLevel(args)

	case "st":
		if len(args) > 0 {
			if n, err := strconv.Atoi(args[0]); err == nil {
				d.e.SetFixedSeconds(n)
			}
		}

	case "sd":
		if len(args) > 0 {
			if n, err := strconv.Atoi(args[0]); err == nil {
				d.e.SetDepthLimit(n)
			}
		}

	case "usermove":
		if len(args) == 0 {
			d.out <- "Illegal move: (missing)"
			break
		}
		if err := d.e.UserMove(ctx, args[0]); err != nil {
			d.out <- fmt.Sprintf("Illegal move: %v", args[0])
		}

	case "?":
		d.e.Interrupt()

	case "ping":
		if len(args) > 0 {
			d.out <- fmt.Sprintf("pong %v", args[0])
		}

	case "draw":
		if d.e.EvaluateDraw() {
			d.out <- "offer draw"
		}

	case "setboard":
		position := strings.TrimSpace(strings.TrimPrefix(line, "setboard"))
		if err := d.e.SetBoard(ctx, position); err != nil {
			logw.Exitf(ctx, "Invalid FEN on setboard: %v", err)
		}

	case "undo":
		if err := d.e.Undo(); err != nil {
			d.out <- fmt.Sprintf("Error (%v): undo", err)
		}

	case "remove":
		if err := d.e.Remove(); err != nil {
			d.out <- fmt.Sprintf("Error (%v): remove", err)
		}

	default:
		d.out <- fmt.Sprintf("Error (unknown command): %v", cmd)
	}
	return false
}

// cmdLevel parses "level MPS BASE INC". BASE is minutes, or MM:SS.
func (d *Driver) cmdLevel(args []string) {
	if len(args) < 3 {
		return
	}
	mps, err := strconv.Atoi(args[0])
	if err != nil {
		return
	}
	base, ok := parseBaseTime(args[1])
	if !ok {
		return
	}
	incSeconds, err := strconv.Atoi(args[2])
	if err != nil {
		return
	}
	d.e.SetLevel(mps, base, time.Duration(incSeconds)*time.Second)
}

func parseBaseTime(s string) (time.Duration, bool) {
	if m, sec, ok := strings.Cut(s, ":"); ok {
		minutes, err1 := strconv.Atoi(m)
		seconds, err2 := strconv.Atoi(sec)
		if err1 != nil || err2 != nil {
			return 0, false
		}
		return time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second, true
	}
	minutes, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return time.Duration(minutes) * time.Minute, true
}

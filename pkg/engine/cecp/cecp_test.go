package cecp_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/relkin/chessdbot/pkg/board"
	"github.com/relkin/chessdbot/pkg/engine"
	"github.com/relkin/chessdbot/pkg/engine/cecp"
	"github.com/relkin/chessdbot/pkg/eval"
	"github.com/relkin/chessdbot/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDriver wires an engine and a CECP driver together the way
// cmd/chessdbot does, returning the input/output channels for the test to
// drive.
func newTestDriver(t *testing.T) (chan<- string, <-chan string) {
	t.Helper()

	ctx := context.Background()
	zt := board.NewZobristTable(9)
	tt := search.NoTranspositionTable{}
	moves := make(chan engine.Outcome, 10)

	e := engine.New(ctx, "chessdbot", "test", zt, tt, eval.DefaultWeights(), nil, 3, func(o engine.Outcome) {
		moves <- o
	})
	t.Cleanup(e.Quit)

	in := make(chan string, 10)
	d, out := cecp.NewDriver(ctx, e, in, moves)
	t.Cleanup(func() { d.Close() })

	return in, out
}

func collectUntil(t *testing.T, out <-chan string, want string, timeout time.Duration) []string {
	t.Helper()
	deadline := time.After(timeout)
	var lines []string
	for {
		select {
		case line := <-out:
			lines = append(lines, line)
			if strings.HasPrefix(line, want) {
				return lines
			}
		case <-deadline:
			t.Fatalf("timed out waiting for line with prefix %q; got %v", want, lines)
		}
	}
}

func TestDriver_protoverEmitsFeatureLine(t *testing.T) {
	in, out := newTestDriver(t)
	in <- "protover 2"

	lines := collectUntil(t, out, "feature", time.Second)
	last := lines[len(lines)-1]
	assert.Contains(t, last, "setboard=1")
	assert.Contains(t, last, "usermove=1")
	assert.Contains(t, last, "myname=\"chessdbot")
}

func TestDriver_pingRespondsWithPong(t *testing.T) {
	in, out := newTestDriver(t)
	in <- "ping 7"

	lines := collectUntil(t, out, "pong", time.Second)
	assert.Equal(t, "pong 7", lines[len(lines)-1])
}

func TestDriver_usermoveThenGoProducesAMove(t *testing.T) {
	in, out := newTestDriver(t)
	in <- "force"
	in <- "usermove e2e4"
	in <- "go"

	lines := collectUntil(t, out, "move ", 5*time.Second)
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "move "))
}

func TestDriver_illegalUsermoveReportsError(t *testing.T) {
	in, out := newTestDriver(t)
	in <- "force"
	in <- "usermove e2e5"

	lines := collectUntil(t, out, "Illegal move", time.Second)
	assert.Contains(t, lines[len(lines)-1], "e2e5")
}

func TestDriver_setboardRejectsGarbageFEN(t *testing.T) {
	ctx := context.Background()
	zt := board.NewZobristTable(9)
	tt := search.NoTranspositionTable{}

	e := engine.New(ctx, "chessdbot", "test", zt, tt, eval.DefaultWeights(), nil, 3, func(engine.Outcome) {})
	require.NotNil(t, e)
	require.Error(t, e.SetBoard(ctx, "not a fen"))
}

func TestDriver_quitStopsProcessing(t *testing.T) {
	in, out := newTestDriver(t)
	in <- "quit"

	select {
	case <-out:
	case <-time.After(time.Second):
	}

	select {
	case _, ok := <-out:
		assert.False(t, ok, "output channel should be closed after quit")
	case <-time.After(time.Second):
		t.Fatal("driver did not close output after quit")
	}
}

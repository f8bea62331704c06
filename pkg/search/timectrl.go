package search

import (
	"fmt"
	"time"

	"github.com/relkin/chessdbot/pkg/board"
)

// TimeControl holds each side's remaining clock and, if known, the number of
// moves left before the next time increment.
type TimeControl struct {
	White, Black time.Duration
	Moves        int // 0 == rest of the game
}

// Limits returns the soft and hard budget for the side to move's next
// decision. Past the soft limit no new iteration should start; past the
// hard limit the in-flight iteration is aborted outright.
func (t TimeControl) Limits(c board.Color) (soft, hard time.Duration) {
	remainder := t.White
	if c == board.Black {
		remainder = t.Black
	}

	// Absent move-count information, assume 40 more moves to the end of
	// the game. soft = remainder / (2 * movesLeft), hard = 3 * soft.
	moves := time.Duration(40)
	if t.Moves > 0 {
		moves = time.Duration(t.Moves) + 1
	}

	soft = remainder / (2 * moves)
	hard = 3 * soft
	return soft, hard
}

func (t TimeControl) String() string {
	if t.Moves == 0 {
		return fmt.Sprintf("%.1f<>%.1f", t.White.Seconds(), t.Black.Seconds())
	}
	return fmt.Sprintf("%.1f<>%.1f[moves=%v]", t.White.Seconds(), t.Black.Seconds(), t.Moves)
}

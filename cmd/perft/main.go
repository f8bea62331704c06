// perft is a movegen debugging tools. See: https://www.chessprogramming.org/Perft_Results.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/relkin/chessdbot/pkg/board"
	"github.com/relkin/chessdbot/pkg/board/fen"
	"github.com/seekerror/logw"
)

var (
	depth    = flag.Int("depth", 4, "Search depth")
	position = flag.String("fen", "", "Start position (default to standard)")
	divide   = flag.Bool("divide", false, "Divide counts by initial move")
)

func main() {
	ctx := context.Background()
	flag.Parse()

	if *position == "" {
		*position = fen.Initial
	}

	zt := board.NewZobristTable(1)
	pos, err := fen.Decode(*position, zt)
	if err != nil {
		logw.Exitf(ctx, "Invalid fen '%v': %v", *position, err)
	}
	h := board.NewHistory(zt, pos)

	for i := 1; i <= *depth; i++ {
		start := time.Now()
		nodes := search(h, i, *divide && i == *depth)
		duration := time.Since(start)

		println(fmt.Sprintf("perft,%v,%v,%v,%v", *position, i, nodes, duration.Microseconds()))
	}
}

func search(h *board.History, depth int, d bool) int64 {
	if depth == 0 {
		return 1
	}

	var nodes int64
	for _, m := range board.GenerateMoves(h.Position(), false) {
		if !h.TryMake(m) {
			continue
		}
		count := search(h, depth-1, false)
		h.Unmake()

		if d {
			println(fmt.Sprintf("%v: %v", m, count))
		}
		nodes += count
	}
	return nodes
}

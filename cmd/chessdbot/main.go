// chessdbot is a standalone CECP/XBoard chess engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/relkin/chessdbot/pkg/board"
	"github.com/relkin/chessdbot/pkg/book"
	"github.com/relkin/chessdbot/pkg/engine"
	"github.com/relkin/chessdbot/pkg/engine/cecp"
	"github.com/relkin/chessdbot/pkg/search"
	"github.com/relkin/chessdbot/pkg/xmlfile"
	"github.com/seekerror/logw"
)

const bookThreshold = 50 // spec.md §4.G: opening book enabled only at strength >= 50

var (
	level     = flag.String("level", "", "Named level in levels.xml to use as the base profile (default: first)")
	levelFlag = flag.String("l", "", "Shorthand for -level")
	factor    = flag.Int("factor", 50, "Strength factor, 1..100: linearly interpolates weights between the weakest and strongest loaded levels")
	levelsXML = flag.String("levels", "levels.xml", "Path to levels.xml")
	ecoXML    = flag.String("eco", "eco.xml", "Path to eco.xml (opening book)")
	ttSize    = flag.Uint64("tt-size", 1<<20, "Transposition table size, in bytes (32 bytes per entry, rounded down to a power of two)")
	zobSeed   = flag.Int64("seed", 1, "Zobrist table seed")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: chessdbot [options]

chessdbot is a CECP/XBoard chess engine.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	name := *level
	if name == "" {
		name = *levelFlag
	}

	levelsFile, err := os.Open(*levelsXML)
	if err != nil {
		logw.Exitf(ctx, "opening %v: %v", *levelsXML, err)
	}
	defer levelsFile.Close()

	levels, err := xmlfile.LoadLevels(levelsFile)
	if err != nil {
		logw.Exitf(ctx, "loading %v: %v", *levelsXML, err)
	}

	base, err := xmlfile.FindLevel(levels, name)
	if err != nil {
		logw.Exitf(ctx, "%v", err)
	}

	weakest, strongest := levels[0], levels[len(levels)-1]
	weights := xmlfile.Scale(weakest.Weights, strongest.Weights, *factor)

	zt := board.NewZobristTable(*zobSeed)
	tt := search.NewTranspositionTable(ctx, *ttSize)

	var bk *book.Book
	if *factor >= bookThreshold {
		bk, err = loadBook(ctx, zt)
		if err != nil {
			logw.Warningf(ctx, "opening book disabled: %v", err)
		}
	}

	moves := make(chan engine.Outcome, 10)
	e := engine.New(ctx, "chessdbot", "relkin", zt, tt, weights, bk, base.MaxDepth, func(o engine.Outcome) {
		moves <- o
	})
	e.SetFixedSeconds(base.MaxSeconds)

	in := engine.ReadStdinLines(ctx)
	driver, out := cecp.NewDriver(ctx, e, in, moves)
	go engine.WriteStdoutLines(ctx, out)

	<-driver.Closed()
}

func loadBook(ctx context.Context, zt *board.ZobristTable) (*book.Book, error) {
	f, err := os.Open(*ecoXML)
	if err != nil {
		return nil, fmt.Errorf("opening eco.xml: %w", err)
	}
	defer f.Close()

	lines, err := xmlfile.LoadOpenings(f, zt)
	if err != nil {
		return nil, fmt.Errorf("loading eco.xml: %w", err)
	}

	bk, err := book.New(lines, zt, 1)
	if err != nil {
		return nil, fmt.Errorf("building opening book: %w", err)
	}
	logw.Infof(ctx, "opening book loaded: %v lines", len(lines))
	return bk, nil
}

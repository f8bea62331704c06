package xmlfile

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/relkin/chessdbot/pkg/board"
	"github.com/relkin/chessdbot/pkg/book"
)

// ecoDoc mirrors eco.xml's <...><opening><move san="..."/>...</opening>...</...>.
type ecoDoc struct {
	Openings []openingEntry `xml:"opening"`
}

type openingEntry struct {
	Moves []moveEntry `xml:"move"`
}

type moveEntry struct {
	SAN string `xml:"san,attr"`
}

// LoadOpenings decodes an eco.xml document into opening-book lines in
// coordinate notation, resolving each SAN move against the actual legal
// moves available at that point in the line (SAN is position-dependent;
// coordinate notation, which book.Line uses, is not).
func LoadOpenings(r io.Reader, zt *board.ZobristTable) ([]book.Line, error) {
	var doc ecoDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("xmlfile: decoding eco document: %w", err)
	}

	lines := make([]book.Line, 0, len(doc.Openings))
	for _, o := range doc.Openings {
		line, err := resolveLine(o, zt)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func resolveLine(o openingEntry, zt *board.ZobristTable) (book.Line, error) {
	pos, err := startPosition(zt)
	if err != nil {
		return nil, err
	}
	h := board.NewHistory(zt, pos)

	line := make(book.Line, 0, len(o.Moves))
	for _, e := range o.Moves {
		m, err := resolveSAN(h, e.SAN)
		if err != nil {
			return nil, fmt.Errorf("xmlfile: opening move %q: %w", e.SAN, err)
		}
		if !h.TryMake(m) {
			return nil, fmt.Errorf("xmlfile: opening move %q is illegal", e.SAN)
		}
		line = append(line, m.String())
	}
	return line, nil
}

// resolveSAN matches a short algebraic notation move against the legal
// moves available in pos. It supports castling, optional disambiguation by
// source file and/or rank, captures, and promotions -- the same surface
// the teacher source's san_to_move covers.
func resolveSAN(h *board.History, san string) (board.Move, error) {
	pos := h.Position()
	s := strings.TrimRight(san, "+#!?")
	if s == "" {
		return board.Move{}, fmt.Errorf("empty SAN move")
	}

	side := pos.Side()
	if s == "O-O" || s == "0-0" {
		return findCastle(pos, side, true)
	}
	if s == "O-O-O" || s == "0-0-0" {
		return findCastle(pos, side, false)
	}

	piece := board.Pawn
	if p, ok := board.ParsePiece(rune(s[0])); ok && s[0] >= 'A' && s[0] <= 'Z' {
		piece = p
		s = s[1:]
	}

	var promotion board.Piece
	if i := strings.IndexAny(s, "=("); i >= 0 {
		rest := strings.Trim(s[i+1:], ")")
		if len(rest) > 0 {
			if p, ok := board.ParsePiece(rune(rest[0])); ok {
				promotion = p
			}
		}
		s = s[:i]
	}

	s = strings.ReplaceAll(s, "x", "")
	if len(s) < 2 {
		return board.Move{}, fmt.Errorf("malformed SAN move %q", san)
	}

	destRunes := []rune(s[len(s)-2:])
	to, err := board.ParseSquare(destRunes[0], destRunes[1])
	if err != nil {
		return board.Move{}, fmt.Errorf("malformed destination in SAN move %q: %w", san, err)
	}
	disambig := s[:len(s)-2]

	var matches []board.Move
	for _, cand := range board.GenerateMoves(pos, false) {
		if cand.To != to || cand.Promotion != promotion {
			continue
		}
		_, cp, ok := pos.Square(cand.From)
		if !ok || cp != piece {
			continue
		}
		if !matchesDisambiguation(cand.From, disambig) {
			continue
		}
		if !h.TryMake(cand) {
			continue
		}
		h.Unmake()
		matches = append(matches, cand)
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return board.Move{}, fmt.Errorf("no legal move matches SAN %q", san)
	default:
		return board.Move{}, fmt.Errorf("ambiguous SAN move %q (disambiguation unresolved)", san)
	}
}

func matchesDisambiguation(from board.Square, disambig string) bool {
	for _, r := range disambig {
		switch {
		case r >= 'a' && r <= 'h':
			f, _ := board.ParseFile(r)
			if from.File() != f {
				return false
			}
		case r >= '1' && r <= '8':
			rk, _ := board.ParseRank(r)
			if from.Rank() != rk {
				return false
			}
		}
	}
	return true
}

func findCastle(pos *board.Position, side board.Color, kingSide bool) (board.Move, error) {
	for _, cand := range board.GenerateMoves(pos, false) {
		_, p, ok := pos.Square(cand.From)
		if !ok || p != board.King {
			continue
		}
		delta := int(cand.To.File()) - int(cand.From.File())
		if kingSide && delta == -2 {
			return cand, nil
		}
		if !kingSide && delta == 2 {
			return cand, nil
		}
	}
	return board.Move{}, fmt.Errorf("no legal castle available")
}

func startPosition(zt *board.ZobristTable) (*board.Position, error) {
	back := [8]board.Piece{board.Rook, board.Knight, board.Bishop, board.Queen, board.King, board.Bishop, board.Knight, board.Rook}

	var placements []board.Placement
	for f := board.ZeroFile; f < board.NumFiles; f++ {
		placements = append(placements,
			board.Placement{Square: board.NewSquare(f, board.Rank1), Color: board.White, Piece: back[int(board.NumFiles)-1-int(f)]},
			board.Placement{Square: board.NewSquare(f, board.Rank2), Color: board.White, Piece: board.Pawn},
			board.Placement{Square: board.NewSquare(f, board.Rank7), Color: board.Black, Piece: board.Pawn},
			board.Placement{Square: board.NewSquare(f, board.Rank8), Color: board.Black, Piece: back[int(board.NumFiles)-1-int(f)]},
		)
	}
	return board.NewPosition(placements, board.FullCastlingRights, false, 0, board.White, 0, 1, zt)
}

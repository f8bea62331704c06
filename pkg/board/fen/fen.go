// Package fen contains utilities for reading and writing positions in
// Forsyth-Edwards Notation.
package fen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/relkin/chessdbot/pkg/board"
)

const (
	// Initial is the FEN of the standard chess starting position.
	Initial = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

// Decode parses a FEN record into a Position. Each of the 8 ranks in the
// piece-placement field must independently account for exactly 8 files; a
// rank that is short or long is rejected even if the overall square count
// happens to reach 64.
func Decode(fen string, zt *board.ZobristTable) (*board.Position, error) {
	parts := strings.Split(strings.TrimSpace(fen), " ")
	if len(parts) != 6 {
		return nil, fmt.Errorf("invalid number of sections in FEN: %q", fen)
	}

	pieces, err := parsePlacement(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid piece placement in FEN %q: %w", fen, err)
	}

	side, ok := parseColor(parts[1])
	if !ok {
		return nil, fmt.Errorf("invalid active color in FEN: %q", fen)
	}

	castle, ok := parseCastling(parts[2])
	if !ok {
		return nil, fmt.Errorf("invalid castling rights in FEN: %q", fen)
	}

	var epValid bool
	var epFile board.File
	if parts[3] != "-" {
		sq, err := board.ParseSquareStr(parts[3])
		if err != nil {
			return nil, fmt.Errorf("invalid en passant target in FEN: %q", fen)
		}
		epValid = true
		epFile = sq.File()
	}

	halfmove, err := strconv.Atoi(parts[4])
	if err != nil || halfmove < 0 {
		return nil, fmt.Errorf("invalid halfmove clock in FEN: %q", fen)
	}

	fullmove, err := strconv.Atoi(parts[5])
	if err != nil || fullmove < 1 {
		return nil, fmt.Errorf("invalid fullmove number in FEN: %q", fen)
	}

	return board.NewPosition(pieces, castle, epValid, epFile, side, halfmove, fullmove, zt)
}

func parsePlacement(field string) ([]board.Placement, error) {
	var pieces []board.Placement

	ranks := strings.Split(field, "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("expected 8 ranks, got %v", len(ranks))
	}

	for i, rankStr := range ranks {
		r := board.Rank8 - board.Rank(i)
		f := board.ZeroFile

		for _, c := range []rune(rankStr) {
			switch {
			case unicode.IsDigit(c):
				f += board.File(c - '0')
			case unicode.IsLetter(c):
				color, piece, ok := parsePiece(c)
				if !ok {
					return nil, fmt.Errorf("invalid piece %q", c)
				}
				if f >= board.NumFiles {
					return nil, fmt.Errorf("rank %v overflows 8 files", r)
				}
				pieces = append(pieces, board.Placement{
					Square: board.NewSquare(board.NumFiles-1-f, r),
					Color:  color,
					Piece:  piece,
				})
				f++
			default:
				return nil, fmt.Errorf("invalid character %q", c)
			}
		}
		if f != board.NumFiles {
			return nil, fmt.Errorf("rank %v has %v files, want 8", r, f)
		}
	}
	return pieces, nil
}

// Encode encodes a position in FEN notation.
func Encode(pos *board.Position) string {
	var sb strings.Builder
	for r := board.NumRanks; r > 0; r-- {
		rank := board.Rank(r - 1)
		blanks := 0
		for f := 0; f < int(board.NumFiles); f++ {
			file := board.File(int(board.NumFiles) - 1 - f)
			color, piece, ok := pos.Square(board.NewSquare(file, rank))
			if !ok {
				blanks++
				continue
			}
			if blanks > 0 {
				sb.WriteString(strconv.Itoa(blanks))
				blanks = 0
			}
			sb.WriteRune(printPiece(color, piece))
		}
		if blanks > 0 {
			sb.WriteString(strconv.Itoa(blanks))
		}
		if rank > board.ZeroRank {
			sb.WriteString("/")
		}
	}

	ep := "-"
	if file, ok := pos.EnPassant(); ok {
		r := board.Rank3
		if pos.Side() == board.White {
			r = board.Rank6
		}
		ep = board.NewSquare(file, r).String()
	}

	return fmt.Sprintf("%v %v %v %v %v %v",
		sb.String(), pos.Side(), printCastling(pos.Castling()), ep, pos.HalfmoveClock(), pos.FullmoveNumber())
}

func parseCastling(str string) (board.Castling, bool) {
	var ret board.Castling
	if str == "-" {
		return ret, true
	}
	for _, r := range []rune(str) {
		switch r {
		case 'K':
			ret |= board.WhiteKingSideCastle
		case 'Q':
			ret |= board.WhiteQueenSideCastle
		case 'k':
			ret |= board.BlackKingSideCastle
		case 'q':
			ret |= board.BlackQueenSideCastle
		default:
			return 0, false
		}
	}
	return ret, true
}

func printCastling(c board.Castling) string {
	if c == board.ZeroCastling {
		return "-"
	}
	ret := ""
	if c.IsAllowed(board.WhiteKingSideCastle) {
		ret += "K"
	}
	if c.IsAllowed(board.WhiteQueenSideCastle) {
		ret += "Q"
	}
	if c.IsAllowed(board.BlackKingSideCastle) {
		ret += "k"
	}
	if c.IsAllowed(board.BlackQueenSideCastle) {
		ret += "q"
	}
	return ret
}

func parseColor(str string) (board.Color, bool) {
	switch str {
	case "w", "W":
		return board.White, true
	case "b", "B":
		return board.Black, true
	default:
		return 0, false
	}
}

func parsePiece(r rune) (board.Color, board.Piece, bool) {
	if p, ok := board.ParsePiece(unicode.ToLower(r)); ok {
		if unicode.IsUpper(r) {
			return board.White, p, true
		}
		return board.Black, p, true
	}
	return board.ZeroColor, board.NoPiece, false
}

func printPiece(c board.Color, p board.Piece) rune {
	r := []rune(p.String())[0]
	if c == board.White {
		return unicode.ToUpper(r)
	}
	return r
}

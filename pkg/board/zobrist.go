package board

import "math/rand"

// ZobristHash is a position hash based on piece-squares, castling rights, en
// passant file and side to move. It is used both for transposition-table
// indexing and for three-fold repetition detection.
//
// See also: https://research.cs.wisc.edu/techreports/1970/TR88.pdf.
type ZobristHash uint64

// ZobristTable is a pseudo-randomized table for computing a position hash
// incrementally. The keys are drawn once at process start; determinism of
// the draw is not required, only that no two keys collide in practice.
type ZobristTable struct {
	piece    [NumColors][NumPieces][NumSquares]ZobristHash
	castling [NumCastling]ZobristHash
	ep       [NumFiles + 1]ZobristHash // index NumFiles means "no en passant"
	side     ZobristHash
}

// NewZobristTable draws a fresh table from the given seed. A seed of zero is
// fine: quality only requires the draw to avoid key collisions, not that it
// be reproducible across runs.
func NewZobristTable(seed int64) *ZobristTable {
	zt := &ZobristTable{}
	r := rand.New(rand.NewSource(seed))

	for c := ZeroColor; c < NumColors; c++ {
		for p := ZeroPiece; p < NumPieces; p++ {
			for sq := ZeroSquare; sq < NumSquares; sq++ {
				zt.piece[c][p][sq] = ZobristHash(r.Uint64())
			}
		}
	}
	for i := ZeroCastling; i < NumCastling; i++ {
		zt.castling[i] = ZobristHash(r.Uint64())
	}
	for f := ZeroFile; f <= NumFiles; f++ {
		zt.ep[f] = ZobristHash(r.Uint64())
	}
	zt.side = ZobristHash(r.Uint64())
	return zt
}

// PieceKey returns the key for a piece of the given color and kind on sq.
func (zt *ZobristTable) PieceKey(c Color, p Piece, sq Square) ZobristHash {
	return zt.piece[c][p][sq]
}

// CastlingKey returns the key for the given castling-rights byte.
func (zt *ZobristTable) CastlingKey(c Castling) ZobristHash {
	return zt.castling[c]
}

// EnPassantKey returns the key for the given en passant state. An invalid
// state hashes as "no file", matching the canonicalization invariant that an
// invalid ep always carries file=0.
func (zt *ZobristTable) EnPassantKey(valid bool, f File) ZobristHash {
	if !valid {
		return zt.ep[NumFiles]
	}
	return zt.ep[f]
}

// SideKey returns the key XORed in iff White is to move (spec invariant 3).
func (zt *ZobristTable) SideKey() ZobristHash {
	return zt.side
}

// Hash computes the full Zobrist hash for a position from scratch. Used at
// setup time and by the property test that checks incremental maintenance.
func (zt *ZobristTable) Hash(p *Position) ZobristHash {
	var h ZobristHash
	for c := ZeroColor; c < NumColors; c++ {
		for k := ZeroPiece; k < NumPieces; k++ {
			bb := p.pieces[c][k]
			for bb != 0 {
				sq := bb.LastPopSquare()
				bb &^= BitMask(sq)
				h ^= zt.PieceKey(c, k, sq)
			}
		}
	}
	h ^= zt.CastlingKey(p.castle)
	h ^= zt.EnPassantKey(p.ep.valid, p.ep.file)
	if p.side == White {
		h ^= zt.side
	}
	return h
}

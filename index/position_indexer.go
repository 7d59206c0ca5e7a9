// Package index implements PositionIndexer, the Gödel-style mapping
// between a table's linear array index and a board position, given a
// fixed material key.
package index

import (
	"errors"
	"fmt"

	"bitbucket.org/zurichess/heisenbase/material"
	"bitbucket.org/zurichess/heisenbase/rules"
)

// Errors returned by PositionIndexer. TwoPiecesOnSameSquare and
// InvalidPosition are recovered by the solver (the slot is marked
// Illegal); the others are surfaced to the caller.
var (
	ErrIndexOutOfBounds      = errors.New("index: index out of bounds")
	ErrTwoPiecesOnSameSquare = errors.New("index: two pieces decoded onto the same square")
	ErrInvalidPosition       = errors.New("index: position fails chess-rules validation")
	ErrMismatchedMaterial    = errors.New("index: position's pawn placement does not match the indexer's material key")
)

// nthLightSquare returns the n-th (0..31) square of a light color, in
// rank-major order with the file offset alternating with rank parity.
func nthLightSquare(n int) rules.Square {
	rank := n / 4
	fileIndex := n % 4
	var file int
	if rank%2 == 0 {
		file = 1 + 2*fileIndex
	} else {
		file = 2 * fileIndex
	}
	return rules.RankFile(rank, file)
}

// nthDarkSquare is nthLightSquare's mirror image for dark squares.
func nthDarkSquare(n int) rules.Square {
	rank := n / 4
	fileIndex := n % 4
	var file int
	if rank%2 == 0 {
		file = 2 * fileIndex
	} else {
		file = 1 + 2*fileIndex
	}
	return rules.RankFile(rank, file)
}

// pieceOrder is the fixed walk order index_to_position/position_to_index
// use: kings first, then Q, R, DarkBishop, LightBishop, N, for each color
// in turn (white pieces, then black pieces).
var pieceOrder = buildPieceOrder()

type orderedPiece struct {
	Color rules.Color
	Role  rules.Role
}

func buildPieceOrder() []orderedPiece {
	var out []orderedPiece
	for _, c := range [...]rules.Color{rules.White, rules.Black} {
		for _, r := range rules.NonPawnRoles {
			out = append(out, orderedPiece{Color: c, Role: r})
		}
	}
	return out
}

// PositionIndexer maps indices to/from board positions for one fixed
// material key: the pawn placement is baked into the key, and this struct
// only varies non-pawn piece placement and side to move.
type PositionIndexer struct {
	key            material.MaterialKey
	pieces         []orderedPiece
	totalPositions int
}

// New builds an indexer for key. Pieces with a zero count for their
// color are skipped in the enumeration (they contribute a radix of 1,
// i.e. no digit at all).
func New(key material.MaterialKey) *PositionIndexer {
	idx := &PositionIndexer{key: key, totalPositions: 2}
	for _, p := range pieceOrder {
		n := key.Counts[p.Color][p.Role]
		for i := 0; i < n; i++ {
			idx.pieces = append(idx.pieces, p)
			if p.Role.IsBishop() {
				idx.totalPositions *= 32
			} else {
				idx.totalPositions *= 64
			}
		}
	}
	return idx
}

// TotalPositions returns 2 * product of per-piece radixes (32 for a bound
// bishop, 64 otherwise).
func (idx *PositionIndexer) TotalPositions() int {
	return idx.totalPositions
}

// IndexToPosition decodes index into a board. Fails with
// ErrIndexOutOfBounds, ErrTwoPiecesOnSameSquare or ErrInvalidPosition; the
// solver treats the latter two as data (the Illegal sentinel), not a
// reason to abort.
func (idx *PositionIndexer) IndexToPosition(index int) (*rules.Position, error) {
	if index < 0 || index >= idx.totalPositions {
		return nil, fmt.Errorf("%w: %d >= %d", ErrIndexOutOfBounds, index, idx.totalPositions)
	}

	pos := rules.NewPosition()
	pos.SideToMove = rules.Color(index % 2)
	remaining := index / 2

	for c := range idx.key.Pawns {
		for bb := idx.key.Pawns[c]; bb != 0; {
			sq := bb.Pop()
			pos.Put(sq, rules.Piece{Color: rules.Color(c), Role: rules.Pawn})
		}
	}

	for _, p := range idx.pieces {
		radix := 64
		if p.Role.IsBishop() {
			radix = 32
		}
		digit := remaining % radix
		remaining /= radix

		var sq rules.Square
		switch p.Role {
		case rules.LightBishop:
			sq = nthLightSquare(digit)
		case rules.DarkBishop:
			sq = nthDarkSquare(digit)
		default:
			sq = rules.Square(digit)
		}

		if pos.PieceAt(sq) != rules.NoPiece {
			return nil, fmt.Errorf("%w: square %s at index %d", ErrTwoPiecesOnSameSquare, sq, index)
		}
		pos.Put(sq, rules.Piece{Color: p.Color, Role: p.Role})
	}

	if !validatePosition(pos) {
		return nil, fmt.Errorf("%w: index %d", ErrInvalidPosition, index)
	}
	return pos, nil
}

// validatePosition rejects boards the chess rules forbid outright: kings
// adjacent (implies the side not to move could capture the opposing king)
// and a side not to move whose king is in check.
func validatePosition(pos *rules.Position) bool {
	whiteKingBb := pos.ByColor[rules.White] & pos.ByRole[rules.King]
	blackKingBb := pos.ByColor[rules.Black] & pos.ByRole[rules.King]
	if whiteKingBb == 0 || blackKingBb == 0 {
		return false
	}
	if whiteKingBb.Count() != 1 || blackKingBb.Count() != 1 {
		return false
	}
	if kingsAdjacent(whiteKingBb.AsSquare(), blackKingBb.AsSquare()) {
		return false
	}
	return !pos.InCheck(pos.SideToMove.Opposite())
}

func kingsAdjacent(a, b rules.Square) bool {
	dr := a.Rank() - b.Rank()
	df := a.File() - b.File()
	if dr < 0 {
		dr = -dr
	}
	if df < 0 {
		df = -df
	}
	return dr <= 1 && df <= 1
}

// PositionToIndex encodes pos back into an index under this indexer's
// material key. Round-tripping is not guaranteed to reproduce the exact
// same index the position came from when the indexer's piece set contains
// indistinguishable pieces of the same role and color; it is guaranteed to land on a valid index that decodes back to
// an equivalent position.
func (idx *PositionIndexer) PositionToIndex(pos *rules.Position) (int, error) {
	for c := range idx.key.Pawns {
		if (pos.ByColor[rules.Color(c)] & pos.ByRole[rules.Pawn]) != idx.key.Pawns[c] {
			return 0, fmt.Errorf("%w", ErrMismatchedMaterial)
		}
	}

	index := 0
	multiplier := 1

	index += multiplier * int(pos.SideToMove)
	multiplier *= 2

	occ := pos.ByColor[rules.White] | pos.ByColor[rules.Black]
	occ &^= pos.ByRole[rules.Pawn]

	for _, p := range idx.pieces {
		radix := 64
		mask := ^rules.Bitboard(0)
		if p.Role.IsBishop() {
			radix = 32
			mask = lightSquares
			if p.Role == rules.DarkBishop {
				mask = ^lightSquares
			}
		}
		candidates := occ & pos.ByColor[p.Color] & pos.ByRole[p.Role] & mask
		if candidates == 0 {
			return 0, fmt.Errorf("%w", ErrMismatchedMaterial)
		}
		sq := candidates.LSB().AsSquare()
		occ &^= sq.Bitboard()

		digit := int(sq)
		if p.Role.IsBishop() {
			digit = int(sq) / 2
		}

		index += multiplier * digit
		multiplier *= radix
	}

	return index, nil
}

var lightSquares = func() rules.Bitboard {
	var bb rules.Bitboard
	for sq := rules.Square(0); sq < 64; sq++ {
		if rules.IsLightSquare(sq) {
			bb |= sq.Bitboard()
		}
	}
	return bb
}()

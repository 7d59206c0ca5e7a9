package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardFromFEN(t *testing.T) {
	pos, err := BoardFromFEN("8/8/8/4k3/8/8/8/4K3")
	require.NoError(t, err)
	assert.Equal(t, Piece{Color: White, Role: King}, pos.PieceAt(RankFile(0, 4)))
	assert.Equal(t, Piece{Color: Black, Role: King}, pos.PieceAt(RankFile(4, 4)))
	assert.Equal(t, NoPiece, pos.PieceAt(RankFile(3, 3)))
}

func TestBoardFromFENResolvesBishopColor(t *testing.T) {
	pos, err := BoardFromFEN("8/8/8/8/8/8/8/BB6")
	require.NoError(t, err)
	assert.Equal(t, DarkBishop, pos.PieceAt(RankFile(0, 0)).Role)
	assert.Equal(t, LightBishop, pos.PieceAt(RankFile(0, 1)).Role)
}

func TestKingOppositionIsCheck(t *testing.T) {
	// Two bare kings adjacent: illegal in real chess but useful to check
	// that attack generation sees the adjacency.
	pos, err := BoardFromFEN("8/8/8/3kK3/8/8/8/8")
	require.NoError(t, err)
	assert.True(t, pos.InCheck(Black))
}

func TestRookCheckmate(t *testing.T) {
	// Classic KR vs K mate: black king on a8, white king on b6, rook on h8.
	pos, err := BoardFromFEN("k6R/8/1K6/8/8/8/8/8")
	require.NoError(t, err)
	pos.SideToMove = Black
	assert.True(t, pos.IsCheckmate())
}

func TestStalemate(t *testing.T) {
	// Classic KQ vs K stalemate: black king a8, white king b6, queen c7.
	pos, err := BoardFromFEN("k7/2Q5/1K6/8/8/8/8/8")
	require.NoError(t, err)
	pos.SideToMove = Black
	assert.True(t, pos.IsStalemate())
	assert.False(t, pos.IsCheckmate())
}

func TestInsufficientMaterial(t *testing.T) {
	pos, err := BoardFromFEN("8/8/8/4k3/8/8/8/4K3")
	require.NoError(t, err)
	assert.True(t, pos.IsInsufficientMaterial())

	pos, err = BoardFromFEN("8/8/8/4k3/8/8/8/3QK3")
	require.NoError(t, err)
	assert.False(t, pos.IsInsufficientMaterial())
}

func TestLegalMovesExcludesSelfCheck(t *testing.T) {
	pos, err := BoardFromFEN("8/8/8/3k4/8/8/8/R3K3")
	require.NoError(t, err)
	pos.SideToMove = Black
	for _, m := range pos.LegalMoves() {
		clone := *pos
		clone.Play(m)
		assert.False(t, clone.InCheck(Black), "move %v leaves king in check", m)
	}
}

func TestSquareFromStringRoundTrip(t *testing.T) {
	sq, err := SquareFromString("e4")
	require.NoError(t, err)
	assert.Equal(t, "e4", sq.String())

	_, err = SquareFromString("z9")
	assert.Error(t, err)
}

package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitbucket.org/zurichess/heisenbase/material"
)

func TestTotalPositionsKvK(t *testing.T) {
	key, err := material.ParseMaterialKey("KvK")
	require.NoError(t, err)
	idx := New(key)
	assert.Equal(t, 2*64*64, idx.TotalPositions())
}

func TestIndexToPositionOutOfBounds(t *testing.T) {
	key, err := material.ParseMaterialKey("KvK")
	require.NoError(t, err)
	idx := New(key)
	_, err = idx.IndexToPosition(idx.TotalPositions())
	assert.ErrorIs(t, err, ErrIndexOutOfBounds)
}

func TestIndexToPositionRoundTripIsStable(t *testing.T) {
	key, err := material.ParseMaterialKey("KQvK")
	require.NoError(t, err)
	idx := New(key)

	for i := 0; i < idx.TotalPositions(); i++ {
		pos, err := idx.IndexToPosition(i)
		if err != nil {
			continue
		}
		j, err := idx.PositionToIndex(pos)
		require.NoError(t, err)
		posAgain, err := idx.IndexToPosition(j)
		require.NoError(t, err)
		k, err := idx.PositionToIndex(posAgain)
		require.NoError(t, err)
		posOnceMore, err := idx.IndexToPosition(k)
		require.NoError(t, err)
		assert.Equal(t, posAgain.ByColor, posOnceMore.ByColor)
		assert.Equal(t, posAgain.ByRole, posOnceMore.ByRole)
	}
}

func TestPositionToIndexRejectsMismatchedPawns(t *testing.T) {
	withPawn, err := material.ParseMaterialKey("Ke2vK")
	require.NoError(t, err)
	withoutPawn, err := material.ParseMaterialKey("KvK")
	require.NoError(t, err)

	idx := New(withPawn)
	other := New(withoutPawn)
	// White king on a1, black king on h8, white to move.
	pos, err := other.IndexToPosition(2 * 64 * 63)
	require.NoError(t, err)
	_, err = idx.PositionToIndex(pos)
	assert.ErrorIs(t, err, ErrMismatchedMaterial)
}

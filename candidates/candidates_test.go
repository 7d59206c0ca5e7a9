package candidates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
candidates:
  - material: KQvK
    games: 5000
  - material: KRvKe4
    games: 9000
  - material: KQRvKQR
    games: 100
`

func TestDecodeAndSelect(t *testing.T) {
	cands, err := Decode(strings.NewReader(sampleYAML))
	require.NoError(t, err)
	require.Len(t, cands, 3)

	selected, err := Selected(cands, 1000, 6)
	require.NoError(t, err)
	require.Len(t, selected, 2)
	assert.Equal(t, "KRvKe4", selected[0].String())
	assert.Equal(t, "KQvK", selected[1].String())
}

func TestSelectedFiltersByMaxPieces(t *testing.T) {
	cands, err := Decode(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	selected, err := Selected(cands, 0, 3)
	require.NoError(t, err)
	for _, k := range selected {
		assert.LessOrEqual(t, k.TotalPieceCount(), 3)
	}
}

package compress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitbucket.org/zurichess/heisenbase/score"
)

func TestRoundTripSimple(t *testing.T) {
	data := []score.WdlScoreRange{score.Win, score.Win, score.Draw, score.Draw, score.Win, score.Win, score.Draw, score.Draw}
	c := Compress(data)
	got, err := Decompress(c)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestRoundTripMixedValues(t *testing.T) {
	data := []score.WdlScoreRange{score.Win, score.Draw, score.Loss, score.WinOrDraw, score.DrawOrLoss, score.Draw, score.Win, score.Loss}
	c := Compress(data)
	got, err := Decompress(c)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestCompressionIsEffectiveForRepetition(t *testing.T) {
	data := make([]score.WdlScoreRange, 100)
	for i := range data {
		data[i] = score.Win
	}
	c := Compress(data)
	assert.Less(t, len(c.Bitstream), len(data))

	got, err := Decompress(c)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestRoundTripEmpty(t *testing.T) {
	c := Compress(nil)
	got, err := Decompress(c)
	require.NoError(t, err)
	assert.Empty(t, got)
}

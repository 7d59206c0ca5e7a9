package wdlfile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitbucket.org/zurichess/heisenbase/material"
	"bitbucket.org/zurichess/heisenbase/score"
)

func TestWriteReadRoundTrip(t *testing.T) {
	key, err := material.ParseMaterialKey("KvK")
	require.NoError(t, err)

	positions := make([]score.WdlScoreRange, 8192)
	for i := range positions {
		positions[i] = score.Draw
	}
	positions[10] = score.IllegalPosition

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Table{Material: key, Positions: positions}))

	got, err := Read(&buf, key)
	require.NoError(t, err)
	assert.Equal(t, key.String(), got.Material.String())
	assert.Equal(t, positions, got.Positions)
}

func TestReadRejectsBadMagic(t *testing.T) {
	key, err := material.ParseMaterialKey("KvK")
	require.NoError(t, err)

	buf := bytes.NewBufferString("XXXX")
	_, err = Read(buf, key)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestReadRejectsBadVersion(t *testing.T) {
	key, err := material.ParseMaterialKey("KvK")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Table{Material: key, Positions: []score.WdlScoreRange{score.Draw}}))
	data := buf.Bytes()
	data[4] = 99 // corrupt the version byte

	_, err = Read(bytes.NewReader(data), key)
	assert.ErrorIs(t, err, ErrFormat)
	assert.Contains(t, err.Error(), "version")
}

func TestReadRejectsMismatchedMaterialKey(t *testing.T) {
	key, err := material.ParseMaterialKey("KvK")
	require.NoError(t, err)
	other, err := material.ParseMaterialKey("KQvK")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Table{Material: key, Positions: []score.WdlScoreRange{score.Draw}}))

	_, err = Read(&buf, other)
	assert.ErrorIs(t, err, ErrFormat)
}

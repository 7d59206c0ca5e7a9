package solver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitbucket.org/zurichess/heisenbase/material"
	"bitbucket.org/zurichess/heisenbase/score"
)

func TestBuildKvKAllDrawOrIllegal(t *testing.T) {
	key, err := material.ParseMaterialKey("KvK")
	require.NoError(t, err)

	children, err := LoadChildren(t.TempDir(), key.ChildMaterialKeys())
	require.NoError(t, err)

	table, err := Build(context.Background(), key, children, Options{Workers: 2, Reporter: NoopReporter{}})
	require.NoError(t, err)

	assert.Len(t, table.Positions, 2*64*64)
	for _, v := range table.Positions {
		assert.Contains(t, []score.WdlScoreRange{score.Draw, score.IllegalPosition}, v)
	}
}

package solver

import (
	"fmt"
	"os"
	"path/filepath"

	"bitbucket.org/zurichess/heisenbase/index"
	"bitbucket.org/zurichess/heisenbase/material"
	"bitbucket.org/zurichess/heisenbase/rules"
	"bitbucket.org/zurichess/heisenbase/score"
	"bitbucket.org/zurichess/heisenbase/wdlfile"
)

// childEntry pairs a loaded child table with the indexer that decodes
// positions for it.
type childEntry struct {
	table   wdlfile.Table
	indexer *index.PositionIndexer
}

// ChildCache holds every successfully loaded child table for one parent
// build, plus the names of children whose file was missing. It is built
// once, before the iteration loop, and never mutated afterwards -- every
// worker reads it by reference with no locking.
type ChildCache struct {
	loaded  map[string]childEntry
	missing map[string]bool
}

// LoadChildren attempts to load every material key in children from
// dataDir/<key>.hbt. A missing file is recorded, not an error: the
// spec's ChildTableMissing is recovered, with transitions into that
// child resolving to Unknown.
func LoadChildren(dataDir string, children []material.MaterialKey) (*ChildCache, error) {
	cache := &ChildCache{
		loaded:  make(map[string]childEntry, len(children)),
		missing: make(map[string]bool),
	}

	for _, child := range children {
		name := child.String()
		path := filepath.Join(dataDir, name+".hbt")

		f, err := os.Open(path)
		if os.IsNotExist(err) {
			cache.missing[name] = true
			log.Warningf("child table %s missing at %s, transitions into it resolve to Unknown", name, path)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("solver: opening child table %s: %w", name, err)
		}

		table, err := wdlfile.Read(f, child)
		closeErr := f.Close()
		if err != nil {
			return nil, fmt.Errorf("solver: reading child table %s: %w", name, err)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("solver: closing child table %s: %w", name, closeErr)
		}

		cache.loaded[name] = childEntry{table: table, indexer: index.New(child)}
	}

	return cache, nil
}

// Missing reports whether key's table was not found.
func (c *ChildCache) Missing(key material.MaterialKey) bool {
	return c.missing[key.String()]
}

// Lookup resolves the WDL value of pos under the child table for key. It
// returns loaded=false if the child table was never loaded -- the caller
// should treat the transition as Unknown in that case, not as an error.
func (c *ChildCache) Lookup(key material.MaterialKey, pos *rules.Position) (value score.WdlScoreRange, loaded bool, err error) {
	entry, ok := c.loaded[key.String()]
	if !ok {
		return 0, false, nil
	}
	idx, err := entry.indexer.PositionToIndex(pos)
	if err != nil {
		return 0, true, fmt.Errorf("solver: indexing into child table %s: %w", key, err)
	}
	// position_to_index is not guaranteed to reproduce the index the
	// position was originally stored at when the table has
	// indistinguishable pieces; round-trip once to land on the stable,
	// canonical index the child's score actually lives at.
	if canonical, err := entry.indexer.IndexToPosition(idx); err == nil {
		if reIdx, err := entry.indexer.PositionToIndex(canonical); err == nil {
			idx = reIdx
		}
	}
	return entry.table.Positions[idx], true, nil
}

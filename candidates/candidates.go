// Package candidates reads the popularity-ranked candidate list that
// drives generate_many: which material keys to build, in what order, and
// a ceiling on total piece count so the caller can bound how deep a run
// goes.
package candidates

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"bitbucket.org/zurichess/heisenbase/material"
)

// Candidate is one line of the ranked list: a material key and how many
// recorded games reached it (the popularity signal). Its piece count is
// not stored; Selected parses the key to get it.
type Candidate struct {
	Material string `yaml:"material"`
	Games    int    `yaml:"games"`
}

type document struct {
	Candidates []Candidate `yaml:"candidates"`
}

// Load reads a candidates.yaml document from path.
func Load(path string) ([]Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("candidates: opening %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a candidates.yaml document from r.
func Decode(r io.Reader) ([]Candidate, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("candidates: parsing document: %w", err)
	}
	return doc.Candidates, nil
}

// Selected filters candidates down to those whose total piece count is at
// most maxPieces and whose recorded game count is at least minGames,
// returned most-popular first -- generate_many's "popularity-ranked
// candidate list" driving order. A candidate that passes the game-count
// filter but whose material key does not parse makes Selected return an
// error.
func Selected(cands []Candidate, minGames, maxPieces int) ([]material.MaterialKey, error) {
	type scored struct {
		key   material.MaterialKey
		games int
	}
	var keep []scored
	for _, c := range cands {
		if c.Games < minGames {
			continue
		}
		key, err := material.ParseMaterialKey(c.Material)
		if err != nil {
			return nil, fmt.Errorf("candidates: material %q: %w", c.Material, err)
		}
		if key.TotalPieceCount() > maxPieces {
			continue
		}
		keep = append(keep, scored{key: key, games: c.Games})
	}

	sort.SliceStable(keep, func(i, j int) bool { return keep[i].games > keep[j].games })

	out := make([]material.MaterialKey, len(keep))
	for i, s := range keep {
		out[i] = s.key
	}
	return out, nil
}

// Package solver implements the Table Builder: bounded-iteration,
// parallel retrograde analysis over a material key's full position space.
package solver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"bitbucket.org/zurichess/heisenbase/index"
	"bitbucket.org/zurichess/heisenbase/material"
	"bitbucket.org/zurichess/heisenbase/rules"
	"bitbucket.org/zurichess/heisenbase/score"
	"bitbucket.org/zurichess/heisenbase/wdlfile"
)

// MaxSteps is the hard cap on solver sweeps, matching the halfmove
// horizon encoded in DTZ: no legal endgame in the supported materials
// should need more propagation steps than this to converge.
const MaxSteps = 101

// ErrIterationLimitExceeded is fatal: the solver failed to reach a fixed
// point within MaxSteps, indicating a bug rather than an expected
// outcome.
var ErrIterationLimitExceeded = errors.New("solver: iteration limit exceeded without reaching a fixed point")

// Options configures a Build run.
type Options struct {
	// Workers is the number of parallel sweep workers. Zero means use
	// runtime.GOMAXPROCS(0).
	Workers int
	// Reporter receives one SweepDone call per completed sweep. Nil
	// disables reporting entirely.
	Reporter Reporter
}

// Build runs retrograde analysis to a fixed point for key, using
// children (already-solved tables for every signature key.ChildMaterialKeys()
// can reach) and returns the finished WDL table.
func Build(ctx context.Context, key material.MaterialKey, children *ChildCache, opts Options) (wdlfile.Table, error) {
	idx := index.New(key)
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = NoopReporter{}
	}

	n := idx.TotalPositions()
	current := make([]score.DtzScoreRange, n)
	next := make([]score.DtzScoreRange, n)
	for i := range current {
		current[i] = score.UnknownRange()
	}

	materialName := key.String()
	progress := &Progress{}
	step := 0
	for {
		step++
		if step > MaxSteps {
			return wdlfile.Table{}, fmt.Errorf("%w: %s after %d sweeps", ErrIterationLimitExceeded, materialName, MaxSteps)
		}

		start := time.Now()
		changed, err := sweep(ctx, key, idx, children, current, next, workers)
		if err != nil {
			return wdlfile.Table{}, err
		}
		progress.Update(step, changed)
		reporter.SweepDone(materialName, progress.Iteration(), progress.PositionsChanged(), time.Since(start))

		current, next = next, current
		if changed == 0 {
			break
		}
	}

	wdlPositions := make([]score.WdlScoreRange, n)
	for i, r := range current {
		wdlPositions[i] = r.ToWDL()
	}

	return wdlfile.Table{Material: key, Positions: wdlPositions}, nil
}

// sweep evaluates every index once, reading only from cur and writing
// only to next, then returns how many entries differed from cur. Each
// index has exactly one writer, so workers need no locking. The index
// range is split once into one contiguous slice per worker; there is no
// work stealing, so a worker that finishes its slice early stays idle
// until the others are done.
func sweep(ctx context.Context, key material.MaterialKey, idx *index.PositionIndexer, children *ChildCache, cur, next []score.DtzScoreRange, workers int) (int, error) {
	n := len(cur)
	chunk := (n + workers - 1) / workers

	changedPerWorker := make([]int, workers)
	g, gctx := errgroup.WithContext(ctx)

	for w := 0; w < workers; w++ {
		w := w
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			changed := 0
			for i := lo; i < hi; i++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				value, err := evaluateIndex(key, idx, children, cur, i)
				if err != nil {
					return err
				}
				next[i] = value
				if value != cur[i] {
					changed++
				}
			}
			changedPerWorker[w] = changed
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}

	total := 0
	for _, c := range changedPerWorker {
		total += c
	}
	return total, nil
}

// evaluateIndex computes index i's new DtzScoreRange from cur, the
// previous sweep's values. This is the per-position Bellman step
// described in the solver's design: terminal states are fixed points,
// everything else is the bound-wise max over legal moves.
func evaluateIndex(key material.MaterialKey, idx *index.PositionIndexer, children *ChildCache, cur []score.DtzScoreRange, i int) (score.DtzScoreRange, error) {
	if cur[i].IsCertain() {
		return cur[i], nil
	}

	pos, err := idx.IndexToPosition(i)
	if err != nil {
		if errors.Is(err, index.ErrTwoPiecesOnSameSquare) || errors.Is(err, index.ErrInvalidPosition) {
			return score.IllegalRange(), nil
		}
		return score.DtzScoreRange{}, err
	}

	if pos.IsCheckmate() {
		return score.CheckmateRange(), nil
	}
	if pos.IsStalemate() || pos.IsInsufficientMaterial() {
		return score.DrawRange(), nil
	}

	legal := pos.LegalMoves()
	best := score.IllegalRange()
	first := true
	for _, m := range legal {
		childScore, err := evaluateMove(key, idx, children, cur, pos, m)
		if err != nil {
			return score.DtzScoreRange{}, err
		}
		if first {
			best = childScore
			first = false
		} else {
			best = best.BoundwiseMax(childScore)
		}
	}
	return best, nil
}

func evaluateMove(key material.MaterialKey, idx *index.PositionIndexer, children *ChildCache, cur []score.DtzScoreRange, pos *rules.Position, m rules.Move) (score.DtzScoreRange, error) {
	isSignatureChange := m.IsCapture() || m.IsPromotion() || m.Piece.Role == rules.Pawn

	clone := *pos
	clone.Play(m)

	if !isSignatureChange {
		childIdx, err := idx.PositionToIndex(&clone)
		if err != nil {
			return score.DtzScoreRange{}, fmt.Errorf("solver: indexing same-signature child: %w", err)
		}
		childIdx = stabilize(idx, childIdx)
		return cur[childIdx].Flip().AddHalfMove(), nil
	}

	childKey := material.FromPosition(&clone)
	if childKey.String() == key.String() {
		childIdx, err := idx.PositionToIndex(&clone)
		if err != nil {
			return score.DtzScoreRange{}, fmt.Errorf("solver: indexing same-table pawn-push child: %w", err)
		}
		childIdx = stabilize(idx, childIdx)
		return cur[childIdx].Flip().AddHalfMove(), nil
	}

	if clone.IsCheckmate() {
		return score.CheckmateRange().Flip().AddHalfMove(), nil
	}
	if clone.IsStalemate() || clone.IsInsufficientMaterial() {
		return score.DrawRange().Flip().AddHalfMove(), nil
	}

	if children.Missing(childKey) {
		return score.UnknownRange().Flip().AddHalfMove(), nil
	}
	wdl, loaded, err := children.Lookup(childKey, &clone)
	if err != nil {
		return score.DtzScoreRange{}, err
	}
	if !loaded {
		return score.UnknownRange().Flip().AddHalfMove(), nil
	}
	return score.FromWDL(wdl).Flip().AddHalfMove(), nil
}

// stabilize round-trips idx once more so the sweep always reads the
// canonical index a position settles at, tolerating
// position_to_index(index_to_position(i)) != i for positions with
// indistinguishable pieces.
func stabilize(idx *index.PositionIndexer, i int) int {
	pos, err := idx.IndexToPosition(i)
	if err != nil {
		return i
	}
	j, err := idx.PositionToIndex(pos)
	if err != nil {
		return i
	}
	return j
}

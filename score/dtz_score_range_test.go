package score

import "testing"

func TestFlipIsInvolution(t *testing.T) {
	ranges := []DtzScoreRange{UnknownRange(), IllegalRange(), CheckmateRange(), DrawRange(), {Min: -50, Max: 30}}
	for _, r := range ranges {
		if got := r.Flip().Flip(); got != r {
			t.Errorf("Flip().Flip() of %+v = %+v, want %+v", r, got, r)
		}
	}
}

func TestAddHalfMovePreservesIllegal(t *testing.T) {
	r := IllegalRange()
	if got := r.AddHalfMove(); got.IsIllegal() != r.IsIllegal() {
		t.Errorf("AddHalfMove().IsIllegal() = %v, want %v", got.IsIllegal(), r.IsIllegal())
	}
}

func TestMaxIsCommutativeAndAssociative(t *testing.T) {
	a := DtzScoreRange{Min: -10, Max: 5}
	b := DtzScoreRange{Min: -3, Max: 20}
	c := DtzScoreRange{Min: -50, Max: -1}

	if a.BoundwiseMax(b) != b.BoundwiseMax(a) {
		t.Error("Max is not commutative")
	}
	if a.BoundwiseMax(b).BoundwiseMax(c) != a.BoundwiseMax(b.BoundwiseMax(c)) {
		t.Error("Max is not associative")
	}
}

func TestWdlProjectionRoundTrip(t *testing.T) {
	for _, w := range []WdlScoreRange{Win, Draw, Loss, WinOrDraw, DrawOrLoss, Unknown, IllegalPosition} {
		if got := FromWDL(w).ToWDL(); got != w {
			t.Errorf("FromWDL(%v).ToWDL() = %v, want %v", w, got, w)
		}
	}
}

func TestCheckmateProjectsToLoss(t *testing.T) {
	if got := CheckmateRange().ToWDL(); got != Loss {
		t.Errorf("CheckmateRange().ToWDL() = %v, want Loss", got)
	}
}

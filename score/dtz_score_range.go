package score

// DtzScore is a signed distance, in half-moves, to the next zeroing move
// (capture or pawn move), from the perspective of the side to move.
// +99 means a zeroing move wins immediately; -100 means the side to move
// is checkmated. Values in between count down toward zero as the
// position gets closer to the zeroing event.
type DtzScore int8

const (
	immediateWin  DtzScore = 99
	immediateLoss DtzScore = -100
	drawScore     DtzScore = 0
)

// IsWin, IsDraw and IsLoss classify a bare DtzScore by sign.
func (d DtzScore) IsWin() bool  { return d > 0 }
func (d DtzScore) IsDraw() bool { return d == 0 }
func (d DtzScore) IsLoss() bool { return d < 0 }

// AddHalfMove moves the score one half-move closer to zero, clamped at
// zero: a winning score counts down, a losing score counts up, a draw is
// unaffected.
func (d DtzScore) AddHalfMove() DtzScore {
	switch {
	case d > 0:
		return d - 1
	case d < 0:
		return d + 1
	default:
		return d
	}
}

func maxScore(a, b DtzScore) DtzScore {
	if a > b {
		return a
	}
	return b
}

// DtzScoreRange is a (min, max) pair of DtzScore bounds: the solver's
// working representation of "what is known about this position's
// distance-to-zero so far."
type DtzScoreRange struct {
	Min, Max DtzScore
}

// UnknownRange is the widest legal range: nothing yet known.
func UnknownRange() DtzScoreRange {
	return DtzScoreRange{Min: immediateLoss, Max: immediateWin}
}

// IllegalRange is the sentinel for a position the chess rules forbid:
// Min > Max, a state no legal range can occupy.
func IllegalRange() DtzScoreRange {
	return DtzScoreRange{Min: immediateWin, Max: immediateLoss}
}

// CheckmateRange is the side to move is mated right now.
func CheckmateRange() DtzScoreRange {
	return DtzScoreRange{Min: immediateLoss, Max: immediateLoss}
}

// DrawRange is a forced, immediate draw.
func DrawRange() DtzScoreRange {
	return DtzScoreRange{Min: drawScore, Max: drawScore}
}

// IsCertain reports whether the range has collapsed to a single value, or
// is the Illegal sentinel.
func (r DtzScoreRange) IsCertain() bool {
	return r.Min == r.Max || r.IsIllegal()
}

// IsUncertain is the complement of a collapsed (non-illegal) range.
func (r DtzScoreRange) IsUncertain() bool {
	return r.Min != r.Max
}

// IsIllegal reports whether r is the Illegal sentinel (Min > Max in a way
// no legal score range can produce: a winning lower bound paired with a
// losing upper bound).
func (r DtzScoreRange) IsIllegal() bool {
	return r.Min.IsWin() && r.Max.IsLoss()
}

// Flip swaps and negates the bounds, converting a range from the
// perspective of the side to move to the opponent's perspective.
func (r DtzScoreRange) Flip() DtzScoreRange {
	return DtzScoreRange{Min: -r.Max, Max: -r.Min}
}

// AddHalfMove advances both bounds one half-move toward zero. Illegal is
// a fixed point.
func (r DtzScoreRange) AddHalfMove() DtzScoreRange {
	if r.IsIllegal() {
		return r
	}
	return DtzScoreRange{Min: r.Min.AddHalfMove(), Max: r.Max.AddHalfMove()}
}

// BoundwiseMax returns the bound-wise maximum of r and other: the Bellman
// combiner over the set of legal moves available to the side to move.
func (r DtzScoreRange) BoundwiseMax(other DtzScoreRange) DtzScoreRange {
	return DtzScoreRange{Min: maxScore(r.Min, other.Min), Max: maxScore(r.Max, other.Max)}
}

func sign(d DtzScore) int {
	switch {
	case d > 0:
		return 1
	case d < 0:
		return -1
	default:
		return 0
	}
}

// ToWDL projects a DtzScoreRange down to the 7-valued WdlScoreRange by
// inspecting the sign of each bound. Panics on the two sign combinations
// that are not well-formed, (+,0) and (0,-): no well-formed DtzScoreRange
// produces them, so reaching one indicates a bug upstream, not bad input
// to handle gracefully.
func (r DtzScoreRange) ToWDL() WdlScoreRange {
	switch [2]int{sign(r.Min), sign(r.Max)} {
	case [2]int{1, -1}:
		return IllegalPosition
	case [2]int{1, 1}:
		return Win
	case [2]int{0, 1}:
		return WinOrDraw
	case [2]int{0, 0}:
		return Draw
	case [2]int{-1, 1}:
		return Unknown
	case [2]int{-1, 0}:
		return DrawOrLoss
	case [2]int{-1, -1}:
		return Loss
	default:
		panic("score: DtzScoreRange has an impossible sign combination")
	}
}

// FromWDL expands a WdlScoreRange into the widest DtzScoreRange
// consistent with it -- the inverse used when reading a loaded child
// table during solving.
func FromWDL(w WdlScoreRange) DtzScoreRange {
	switch w {
	case WinOrDraw:
		return DtzScoreRange{Min: drawScore, Max: immediateWin}
	case DrawOrLoss:
		return DtzScoreRange{Min: immediateLoss, Max: drawScore}
	case Win:
		return DtzScoreRange{Min: immediateWin, Max: immediateWin}
	case Draw:
		return DrawRange()
	case Loss:
		return DtzScoreRange{Min: immediateLoss, Max: immediateLoss}
	case IllegalPosition:
		return IllegalRange()
	default:
		return UnknownRange()
	}
}

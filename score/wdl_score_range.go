// Package score implements the two score representations a table moves
// between: WdlScoreRange, the 7-valued lattice stored on disk, and
// DtzScoreRange, the signed-distance interval the solver iterates on.
package score

// WdlScoreRange is the on-disk score: win/draw/loss, with three
// additional values for positions not yet fully resolved. Discriminants
// are fixed by the file format and must not be renumbered.
type WdlScoreRange uint8

const (
	Unknown WdlScoreRange = iota
	WinOrDraw
	DrawOrLoss
	Win
	Draw
	Loss
	IllegalPosition
)

func (w WdlScoreRange) String() string {
	switch w {
	case Unknown:
		return "Unknown"
	case WinOrDraw:
		return "WinOrDraw"
	case DrawOrLoss:
		return "DrawOrLoss"
	case Win:
		return "Win"
	case Draw:
		return "Draw"
	case Loss:
		return "Loss"
	case IllegalPosition:
		return "Illegal"
	default:
		return "Invalid"
	}
}

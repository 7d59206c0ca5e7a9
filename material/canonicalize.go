package material

import "bitbucket.org/zurichess/heisenbase/rules"

// squareTransform maps a square to its image under a board symmetry.
type squareTransform func(r, f int) (int, int)

var (
	transformIdentity  squareTransform = func(r, f int) (int, int) { return r, f }
	transformRot90     squareTransform = func(r, f int) (int, int) { return f, 7 - r }
	transformRot180    squareTransform = func(r, f int) (int, int) { return 7 - r, 7 - f }
	transformRot270    squareTransform = func(r, f int) (int, int) { return 7 - f, r }
	transformFlipH     squareTransform = func(r, f int) (int, int) { return r, 7 - f }
	transformFlipV     squareTransform = func(r, f int) (int, int) { return 7 - r, f }
	transformFlipDiag  squareTransform = func(r, f int) (int, int) { return f, r }
	transformFlipAnti  squareTransform = func(r, f int) (int, int) { return 7 - f, 7 - r }
)

// dihedralGroup is every geometric transform of the square, in an
// arbitrary fixed order.
var dihedralGroup = []squareTransform{
	transformIdentity, transformRot90, transformRot180, transformRot270,
	transformFlipH, transformFlipV, transformFlipDiag, transformFlipAnti,
}

var rotationGroup = []squareTransform{transformIdentity, transformRot90, transformRot180, transformRot270}

var horizontalFlipGroup = []squareTransform{transformIdentity, transformFlipH}

var identityGroup = []squareTransform{transformIdentity}

func (t squareTransform) apply(sq rules.Square) rules.Square {
	r, f := t(sq.Rank(), sq.File())
	return rules.RankFile(r, f)
}

func (t squareTransform) applyBb(bb rules.Bitboard) rules.Bitboard {
	var out rules.Bitboard
	for bb != 0 {
		sq := bb.Pop()
		out |= t.apply(sq).Bitboard()
	}
	return out
}

// flipsColor reports whether t maps light squares to dark squares: true
// for the horizontal and vertical mirrors and the two quarter-turn
// rotations, false for identity, the half-turn rotation and the two
// diagonal reflections.
func (t squareTransform) flipsColor() bool {
	return rules.IsLightSquare(t.apply(rules.RankFile(0, 1))) != rules.IsLightSquare(rules.RankFile(0, 1))
}

// applicableGroup returns the geometric symmetry group allowed for a key
// with the given pawn/bishop shape, per the canonicalization rules: the
// full dihedral group when neither pawns nor bishops are present (bishops
// would be recolored by reflections, pawns would be displaced off their
// files/ranks by anything but a horizontal mirror), rotations only with
// bishops and no pawns, a horizontal mirror only with pawns and no
// bishops, and the identity when both are present.
func (k MaterialKey) applicableGroup() []squareTransform {
	hasPawns := k.Pawns[rules.White]|k.Pawns[rules.Black] != 0
	hasBishops := k.Counts[rules.White][rules.LightBishop] > 0 || k.Counts[rules.White][rules.DarkBishop] > 0 ||
		k.Counts[rules.Black][rules.LightBishop] > 0 || k.Counts[rules.Black][rules.DarkBishop] > 0

	switch {
	case !hasPawns && !hasBishops:
		return dihedralGroup
	case !hasPawns && hasBishops:
		return rotationGroup
	case hasPawns && !hasBishops:
		return horizontalFlipGroup
	default:
		return identityGroup
	}
}

// transform applies a geometric transform and, independently, an optional
// color swap. If the geometric transform flips the board's coloring, the
// two bound-bishop roles are exchanged (see squareTransform.flipsColor) --
// this is the "bishop-color swap occurs as part of horizontal flip"
// adjustment the symmetry group's definition requires.
func (k MaterialKey) transform(t squareTransform, swapColors bool) MaterialKey {
	var out MaterialKey
	colorOf := func(c rules.Color) rules.Color {
		if swapColors {
			return c.Opposite()
		}
		return c
	}

	for c := rules.Color(0); c < rules.Color(rules.ColorArraySize); c++ {
		dst := colorOf(c)
		for _, r := range rules.NonPawnRoles {
			dstRole := r
			if t.flipsColor() && r.IsBishop() {
				if r == rules.LightBishop {
					dstRole = rules.DarkBishop
				} else {
					dstRole = rules.LightBishop
				}
			}
			out.Counts[dst][dstRole] += k.Counts[c][r]
		}
		out.Pawns[dst] = t.applyBb(k.Pawns[c])
	}
	return out
}

// less implements the canonical ordering: for pawnless keys, fewer black
// material first then fewer white material; for keys with pawns, the
// black-pawn bitboard first, then the white-pawn bitboard, then counts.
// Both orderings fall back to a full lexicographic comparison of counts so
// that the relation is a strict total order (required for a well-defined
// minimum).
func less(a, b MaterialKey) bool {
	aPawns := a.Pawns[rules.White] | a.Pawns[rules.Black]
	bPawns := b.Pawns[rules.White] | b.Pawns[rules.Black]
	hasPawns := aPawns != 0 || bPawns != 0

	if hasPawns {
		if a.Pawns[rules.Black] != b.Pawns[rules.Black] {
			return a.Pawns[rules.Black] < b.Pawns[rules.Black]
		}
		if a.Pawns[rules.White] != b.Pawns[rules.White] {
			return a.Pawns[rules.White] < b.Pawns[rules.White]
		}
	} else {
		aBlack, bBlack := a.materialValue(rules.Black), b.materialValue(rules.Black)
		if aBlack != bBlack {
			return aBlack < bBlack
		}
		aWhite, bWhite := a.materialValue(rules.White), b.materialValue(rules.White)
		if aWhite != bWhite {
			return aWhite < bWhite
		}
	}

	for _, r := range rules.NonPawnRoles {
		if a.Counts[rules.White][r] != b.Counts[rules.White][r] {
			return a.Counts[rules.White][r] < b.Counts[rules.White][r]
		}
		if a.Counts[rules.Black][r] != b.Counts[rules.Black][r] {
			return a.Counts[rules.Black][r] < b.Counts[rules.Black][r]
		}
	}
	return false
}

func (k MaterialKey) materialValue(c rules.Color) int {
	n := 0
	for _, r := range rules.NonPawnRoles {
		n += k.Counts[c][r]
	}
	return n
}

// Canonicalize returns the lexicographically minimum key, under the
// applicable symmetry group combined independently with a color swap,
// among all representations of k.
func (k MaterialKey) Canonicalize() MaterialKey {
	best := k
	first := true
	for _, t := range k.applicableGroup() {
		for _, swap := range [...]bool{false, true} {
			cand := k.transform(t, swap)
			if first || less(cand, best) {
				best = cand
				first = false
			}
		}
	}
	return best
}

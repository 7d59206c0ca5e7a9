package material

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"bitbucket.org/zurichess/heisenbase/rules"
)

// ErrParseMaterial is returned by ParseMaterialKey for any malformed
// material key text.
var ErrParseMaterial = errors.New("material: invalid material key")

// TextRoleOrder is the token order used by MaterialKey's text form: K, Q,
// R, N, Bd, Bl. This differs deliberately from rules.NonPawnRoles (the
// order the position indexer walks pieces in) -- the two orderings serve
// different purposes and are kept distinct on purpose.
var TextRoleOrder = [...]rules.Role{rules.King, rules.Queen, rules.Rook, rules.Knight, rules.DarkBishop, rules.LightBishop}

func roleToken(r rules.Role) string {
	switch r {
	case rules.King:
		return "K"
	case rules.Queen:
		return "Q"
	case rules.Rook:
		return "R"
	case rules.Knight:
		return "N"
	case rules.DarkBishop:
		return "Bd"
	case rules.LightBishop:
		return "Bl"
	default:
		return ""
	}
}

// MaterialKey is the canonical signature of a position's material: piece
// counts per color and role, plus the pawn location bitboards.
type MaterialKey struct {
	Counts [rules.ColorArraySize][rules.RoleArraySize]int
	Pawns  [rules.ColorArraySize]rules.Bitboard
}

// NonPawnPieceCount returns the total non-pawn piece count across both
// colors.
func (k MaterialKey) NonPawnPieceCount() int {
	n := 0
	for c := range k.Counts {
		for _, r := range rules.NonPawnRoles {
			n += k.Counts[c][r]
		}
	}
	return n
}

// TotalPieceCount adds pawns to NonPawnPieceCount.
func (k MaterialKey) TotalPieceCount() int {
	return k.NonPawnPieceCount() + k.Pawns[rules.White].Count() + k.Pawns[rules.Black].Count()
}

// FromPosition reads non-pawn counts and pawn bitboards off a board and
// returns the canonicalized key.
func FromPosition(pos *rules.Position) MaterialKey {
	var k MaterialKey
	for c := rules.Color(0); c < rules.Color(rules.ColorArraySize); c++ {
		for _, r := range rules.NonPawnRoles {
			k.Counts[c][r] = (pos.ByColor[c] & pos.ByRole[r]).Count()
		}
	}
	k.Pawns[rules.White] = pos.ByColor[rules.White] & pos.ByRole[rules.Pawn]
	k.Pawns[rules.Black] = pos.ByColor[rules.Black] & pos.ByRole[rules.Pawn]
	return k.Canonicalize()
}

func sideString(counts [rules.RoleArraySize]int, pawns rules.Bitboard) string {
	var sb strings.Builder
	for _, r := range TextRoleOrder {
		tok := roleToken(r)
		for i := 0; i < counts[r]; i++ {
			sb.WriteString(tok)
		}
	}
	var squares []rules.Square
	for bb := pawns; bb != 0; {
		squares = append(squares, bb.Pop())
	}
	sort.Slice(squares, func(i, j int) bool { return squares[i] < squares[j] })
	for _, sq := range squares {
		sb.WriteString(sq.String())
	}
	return sb.String()
}

// String emits the canonical text form: "<white>v<black>".
func (k MaterialKey) String() string {
	return sideString(k.Counts[rules.White], k.Pawns[rules.White]) + "v" + sideString(k.Counts[rules.Black], k.Pawns[rules.Black])
}

// ParseMaterialKey parses a material key's text form. It rejects an absent
// or duplicated 'v' separator, unknown tokens, pawn squares outside rank
// 2..7, duplicate pawn squares across both sides, a missing king on either
// side, and trailing garbage.
func ParseMaterialKey(s string) (MaterialKey, error) {
	parts := strings.Split(s, "v")
	if len(parts) != 2 {
		return MaterialKey{}, fmt.Errorf("%w: %q: need exactly one 'v' separator", ErrParseMaterial, s)
	}

	var k MaterialKey
	seen := map[rules.Square]bool{}
	for _, c := range [...]rules.Color{rules.White, rules.Black} {
		rest := parts[c]
		for len(rest) > 0 {
			switch {
			case rest[0] == 'K' || rest[0] == 'Q' || rest[0] == 'R' || rest[0] == 'N':
				r := map[byte]rules.Role{'K': rules.King, 'Q': rules.Queen, 'R': rules.Rook, 'N': rules.Knight}[rest[0]]
				k.Counts[c][r]++
				rest = rest[1:]
			case rest[0] == 'B':
				if len(rest) < 2 || (rest[1] != 'd' && rest[1] != 'l') {
					return MaterialKey{}, fmt.Errorf("%w: %q: invalid bishop token", ErrParseMaterial, s)
				}
				if rest[1] == 'd' {
					k.Counts[c][rules.DarkBishop]++
				} else {
					k.Counts[c][rules.LightBishop]++
				}
				rest = rest[2:]
			case rest[0] >= 'a' && rest[0] <= 'h':
				if len(rest) < 2 {
					return MaterialKey{}, fmt.Errorf("%w: %q: truncated pawn square", ErrParseMaterial, s)
				}
				sq, err := rules.SquareFromString(rest[:2])
				if err != nil {
					return MaterialKey{}, fmt.Errorf("%w: %q: %v", ErrParseMaterial, s, err)
				}
				if sq.Rank() == 0 || sq.Rank() == 7 {
					return MaterialKey{}, fmt.Errorf("%w: %q: pawn square %s outside rank 2..7", ErrParseMaterial, s, sq)
				}
				if seen[sq] {
					return MaterialKey{}, fmt.Errorf("%w: %q: duplicate pawn square %s", ErrParseMaterial, s, sq)
				}
				seen[sq] = true
				k.Pawns[c] |= sq.Bitboard()
				rest = rest[2:]
			default:
				return MaterialKey{}, fmt.Errorf("%w: %q: unknown token starting %q", ErrParseMaterial, s, rest[:1])
			}
		}
	}

	if k.Counts[rules.White][rules.King] != 1 || k.Counts[rules.Black][rules.King] != 1 {
		return MaterialKey{}, fmt.Errorf("%w: %q: missing king", ErrParseMaterial, s)
	}
	return k, nil
}

// ChildMaterialKeys returns every material signature reachable in one ply
// by a material-changing move: captures of any non-king role, pawn
// promotions (with or without capture), pawn pushes/captures that change
// the pawn bitboard, and a pawn capturing a non-pawn piece (which changes
// both the pawn bitboard and the victim's count at once).
func (k MaterialKey) ChildMaterialKeys() []MaterialKey {
	seen := map[string]MaterialKey{}
	add := func(child MaterialKey) {
		child = child.Canonicalize()
		seen[child.String()] = child
	}

	ps := PawnStructure{White: k.Pawns[rules.White], Black: k.Pawns[rules.Black]}

	for _, succ := range ps.PushSuccessors() {
		child := k
		child.Pawns[rules.White] = succ.White
		child.Pawns[rules.Black] = succ.Black
		add(child)
	}

	for _, c := range [...]rules.Color{rules.White, rules.Black} {
		opp := c.Opposite()
		for _, sq := range ps.PromotingPawns(c) {
			afterPush := ps.WithoutPawn(c, sq)
			for _, promo := range []rules.Role{rules.Queen, rules.Rook, rules.DarkBishop, rules.LightBishop, rules.Knight} {
				child := k
				child.Pawns[rules.White] = afterPush.White
				child.Pawns[rules.Black] = afterPush.Black
				child.Counts[c][promo]++
				add(child)

				for _, victimRole := range rules.NonPawnRoles {
					if victimRole == rules.King || k.Counts[opp][victimRole] == 0 {
						continue
					}
					withCapture := child
					withCapture.Counts[opp][victimRole]--
					add(withCapture)
				}
			}
		}
	}

	for _, c := range [...]rules.Color{rules.White, rules.Black} {
		opp := c.Opposite()
		for _, pc := range ps.CaptureTargets(c) {
			moved := ps.withPawnMoved(c, pc.From, pc.To)
			for _, victimRole := range rules.NonPawnRoles {
				if victimRole == rules.King || k.Counts[opp][victimRole] == 0 {
					continue
				}
				child := k
				child.Pawns[rules.White] = moved.White
				child.Pawns[rules.Black] = moved.Black
				child.Counts[opp][victimRole]--
				add(child)
			}
		}
	}

	for _, c := range [...]rules.Color{rules.White, rules.Black} {
		for _, r := range rules.NonPawnRoles {
			if r == rules.King || k.Counts[c][r] == 0 {
				continue
			}
			child := k
			child.Counts[c][r]--
			add(child)
		}
	}

	self := k.Canonicalize().String()
	out := make([]MaterialKey, 0, len(seen))
	for s, child := range seen {
		if s == self {
			continue
		}
		out = append(out, child)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

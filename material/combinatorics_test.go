package material

import "testing"

func TestNChooseK(t *testing.T) {
	cases := []struct {
		n, k, want int
	}{
		{0, 0, 1},
		{5, 2, 10},
		{5, 3, 10},
		{5, 6, 0},
		{8, 0, 1},
	}
	for _, c := range cases {
		if got := NChooseK(c.n, c.k); got != c.want {
			t.Errorf("NChooseK(%d, %d) = %d, want %d", c.n, c.k, got, c.want)
		}
	}
}

func TestCombinationRoundTrip(t *testing.T) {
	const n, k = 8, 3
	total := NChooseK(n, k)
	for rank := 0; rank < total; rank++ {
		combo := UnrankCombination(n, k, rank)
		if len(combo) != k {
			t.Fatalf("rank %d: got %d indices, want %d", rank, len(combo), k)
		}
		for i := 1; i < len(combo); i++ {
			if combo[i-1] >= combo[i] {
				t.Fatalf("rank %d: combo %v not strictly increasing", rank, combo)
			}
		}
		if got := RankCombination(n, combo); got != rank {
			t.Errorf("RankCombination(%d, %v) = %d, want %d", n, combo, got, rank)
		}
	}
}

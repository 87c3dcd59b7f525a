package stats

import "testing"

func TestGovernmentCacheKeyPerWindow(t *testing.T) {
	if governmentCacheKeyFor(6) == governmentCacheKeyFor(12) {
		t.Error("distinct trend windows must cache under distinct keys")
	}
	if got, want := governmentCacheKeyFor(6), "stats:government:dashboard:6m"; got != want {
		t.Errorf("governmentCacheKeyFor(6) = %q, want %q", got, want)
	}
}

func TestClampMonths(t *testing.T) {
	cases := map[int]int{-1: 6, 0: 6, 25: 6, 1: 1, 6: 6, 12: 12, 24: 24}
	for in, want := range cases {
		if got := clampMonths(in); got != want {
			t.Errorf("clampMonths(%d) = %d, want %d", in, got, want)
		}
	}
}

package stats_test

import (
	"testing"

	"talentbridge/portal-service/internal/stats"
)

// ── Percent / Rate ─────────────────────────────────────────────────────────

func TestPercent(t *testing.T) {
	cases := []struct {
		count, total, want int
	}{
		{0, 0, 0},
		{5, 0, 0}, // zero total never divides
		{1, 3, 33},
		{2, 3, 67},
		{50, 100, 50},
		{100, 100, 100},
	}
	for _, c := range cases {
		if got := stats.Percent(c.count, c.total); got != c.want {
			t.Errorf("Percent(%d, %d) = %d, want %d", c.count, c.total, got, c.want)
		}
	}
}

func TestRate_OneDecimal(t *testing.T) {
	cases := []struct {
		part, total int
		want        float64
	}{
		{0, 0, 0},
		{7, 0, 0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{1, 8, 12.5},
		{10, 10, 100},
	}
	for _, c := range cases {
		if got := stats.Rate(c.part, c.total); got != c.want {
			t.Errorf("Rate(%d, %d) = %v, want %v", c.part, c.total, got, c.want)
		}
	}
}

// ── TopCounts ──────────────────────────────────────────────────────────────

func TestTopCounts_SortsAndTruncates(t *testing.T) {
	rows := []stats.CountRow{
		{Label: "retail", Count: 3},
		{Label: "tech", Count: 10},
		{Label: "finance", Count: 7},
	}
	got := stats.TopCounts(rows, 2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Label != "tech" || got[1].Label != "finance" {
		t.Errorf("order = [%s %s], want [tech finance]", got[0].Label, got[1].Label)
	}
}

func TestTopCounts_StableTies(t *testing.T) {
	rows := []stats.CountRow{
		{Label: "a", Count: 5},
		{Label: "b", Count: 5},
		{Label: "c", Count: 5},
	}
	got := stats.TopCounts(rows, 3)
	for i, want := range []string{"a", "b", "c"} {
		if got[i].Label != want {
			t.Errorf("ties reordered: got[%d] = %s, want %s", i, got[i].Label, want)
		}
	}
}

func TestTopCounts_DoesNotMutateInput(t *testing.T) {
	rows := []stats.CountRow{{Label: "a", Count: 1}, {Label: "b", Count: 9}}
	stats.TopCounts(rows, 1)
	if rows[0].Label != "a" {
		t.Error("input slice was reordered")
	}
}

// ── IndustryDistribution ───────────────────────────────────────────────────

func TestIndustryDistribution_PercentOfFullTotal(t *testing.T) {
	rows := []stats.CountRow{
		{Label: "tech", Count: 60},
		{Label: "finance", Count: 30},
		{Label: "retail", Count: 10},
	}
	got := stats.IndustryDistribution(rows, 2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// Shares are computed over all 100 rows, not the truncated 90.
	if got[0].Percent != 60 || got[1].Percent != 30 {
		t.Errorf("percents = [%d %d], want [60 30]", got[0].Percent, got[1].Percent)
	}
}

func TestIndustryDistribution_Empty(t *testing.T) {
	if got := stats.IndustryDistribution(nil, 5); len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

// ── RankSchools ────────────────────────────────────────────────────────────

func TestRankSchools_ByOfferedCount(t *testing.T) {
	rows := []stats.SchoolRank{
		{SchoolID: "s1", Total: 100, Offered: 20},
		{SchoolID: "s2", Total: 40, Offered: 30},
		{SchoolID: "s3", Total: 10, Offered: 5},
	}
	got := stats.RankSchools(rows, 2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// s2 leads on raw offered count even though s1 has more students.
	if got[0].SchoolID != "s2" || got[1].SchoolID != "s1" {
		t.Errorf("order = [%s %s], want [s2 s1]", got[0].SchoolID, got[1].SchoolID)
	}
	if got[0].Rate != 75.0 {
		t.Errorf("s2 rate = %v, want 75.0", got[0].Rate)
	}
	if got[1].Rate != 20.0 {
		t.Errorf("s1 rate = %v, want 20.0", got[1].Rate)
	}
}

func TestRankSchools_ZeroTotal(t *testing.T) {
	got := stats.RankSchools([]stats.SchoolRank{{SchoolID: "s1", Total: 0, Offered: 0}}, 5)
	if got[0].Rate != 0 {
		t.Errorf("rate = %v, want 0 for a school with no applications", got[0].Rate)
	}
}

// Package stats is the aggregation engine behind the role-scoped dashboards.
// It fans read-only queries out concurrently and combines them with pure
// derivation rules; no mutation ever happens here.
package stats

import (
	"math"
	"sort"
)

// Percent computes round(count/total*100). A zero total yields 0, never a
// division error.
func Percent(count, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}

// Rate computes part/total as a percentage with one-decimal rounding, with
// the same zero guard.
func Rate(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*100*10) / 10
}

// CountRow is a generic (label, count) aggregation row.
type CountRow struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TopCounts sorts rows by count descending and truncates to n. Ties keep
// their input order — no secondary sort key is applied.
func TopCounts(rows []CountRow, n int) []CountRow {
	out := make([]CountRow, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// IndustryShare is one slice of the industry distribution.
type IndustryShare struct {
	Industry string `json:"industry"`
	Count    int    `json:"count"`
	Percent  int    `json:"percent"`
}

// IndustryDistribution derives the top-n industry breakdown with percentage
// shares of the full total (not of the truncated slice).
func IndustryDistribution(rows []CountRow, n int) []IndustryShare {
	total := 0
	for _, r := range rows {
		total += r.Count
	}
	top := TopCounts(rows, n)
	out := make([]IndustryShare, 0, len(top))
	for _, r := range top {
		out = append(out, IndustryShare{Industry: r.Label, Count: r.Count, Percent: Percent(r.Count, total)})
	}
	return out
}

// SchoolRank is one row of the institution retention ranking. It carries
// only aggregate, non-identifying figures besides the school's display name.
type SchoolRank struct {
	SchoolID   string  `json:"schoolId"`
	SchoolName string  `json:"schoolName"`
	Total      int     `json:"total"`
	Offered    int     `json:"offered"`
	Rate       float64 `json:"rate"`
}

// RankSchools sorts by offered count descending, truncates to n, and derives
// each school's retention rate. Ties keep input order.
func RankSchools(rows []SchoolRank, n int) []SchoolRank {
	out := make([]SchoolRank, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Offered > out[j].Offered })
	if len(out) > n {
		out = out[:n]
	}
	for i := range out {
		out[i].Rate = Rate(out[i].Offered, out[i].Total)
	}
	return out
}

package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Milestones are the score thresholds announced when crossed.
var Milestones = []int{500, 1000, 2000, 5000, 10000, 25000, 50000, 100000}

// Rank is a named score tier.
type Rank struct {
	Grade string
	Name  string
	Min   int
}

var ranks = []Rank{
	{Grade: "S", Name: "Legend", Min: 100000},
	{Grade: "A+", Name: "Grandmaster", Min: 50000},
	{Grade: "A", Name: "Master", Min: 25000},
	{Grade: "B+", Name: "Expert", Min: 10000},
	{Grade: "B", Name: "Advanced", Min: 5000},
	{Grade: "C+", Name: "Experienced", Min: 2000},
	{Grade: "C", Name: "Apprentice", Min: 1000},
	{Grade: "D", Name: "Novice", Min: 500},
	{Grade: "E", Name: "Beginner", Min: 0},
}

// RankFor returns the highest rank whose threshold score reaches.
func RankFor(score int) Rank {
	for _, r := range ranks {
		if score >= r.Min {
			return r
		}
	}
	return ranks[len(ranks)-1]
}

// MilestonesCrossed lists thresholds in (prev, cur].
func MilestonesCrossed(prev, cur int) []int {
	var out []int
	for _, m := range Milestones {
		if prev < m && cur >= m {
			out = append(out, m)
		}
	}
	return out
}

// NextMilestone returns the first threshold above score and how far away it is.
// ok is false once every milestone has been reached.
func NextMilestone(score int) (target, remaining int, ok bool) {
	for _, m := range Milestones {
		if score < m {
			return m, m - score, true
		}
	}
	return 0, 0, false
}

// FormatScore abbreviates large scores: 1.2K, 3.4M.
func FormatScore(score int) string {
	d := decimal.NewFromInt(int64(score))
	switch {
	case score >= 1_000_000:
		return d.Div(decimal.NewFromInt(1_000_000)).StringFixed(1) + "M"
	case score >= 1_000:
		return d.Div(decimal.NewFromInt(1_000)).StringFixed(1) + "K"
	default:
		return fmt.Sprint(score)
	}
}

// ScoreStats are per-game totals kept by the score book.
type ScoreStats struct {
	Turns           int
	TotalMatches    int
	TotalChains     int // turns that cascaded past the first pass
	MaxChainLevel   int
	ElementsCleared int
	BestTurn        int
	ShapeCounts     map[Shape]int
}

// ScoreBook accumulates per-game scoring statistics.
type ScoreBook struct {
	stats ScoreStats
}

// NewScoreBook creates an empty score book.
func NewScoreBook() *ScoreBook {
	b := &ScoreBook{}
	b.ResetSession()
	return b
}

// ResetSession clears all totals.
func (b *ScoreBook) ResetSession() {
	b.stats = ScoreStats{ShapeCounts: make(map[Shape]int)}
}

// RecordTurn adds a resolved chain to the totals.
func (b *ScoreBook) RecordTurn(res ChainResult) {
	st := &b.stats
	st.Turns++
	if res.TotalPasses > 1 {
		st.TotalChains++
	}
	st.MaxChainLevel = max(st.MaxChainLevel, res.TotalPasses)
	st.BestTurn = max(st.BestTurn, res.TotalScore)
	for _, p := range res.Passes {
		st.TotalMatches += len(p.Matches)
		st.ElementsCleared += p.RemovedCount
		for _, m := range p.Matches {
			st.ShapeCounts[m.Shape]++
		}
	}
}

// Stats returns a copy of the totals.
func (b *ScoreBook) Stats() ScoreStats {
	out := b.stats
	out.ShapeCounts = make(map[Shape]int, len(b.stats.ShapeCounts))
	for k, v := range b.stats.ShapeCounts {
		out.ShapeCounts[k] = v
	}
	return out
}

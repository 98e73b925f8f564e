package graph

import (
	"math"
	"time"
)

// DefaultHalfLifeDays is used when a node does not declare its own half-life.
const DefaultHalfLifeDays = 14

// Freshness computes the exponential-decay staleness score for a node
// created at createdAt: 2^(-age_days/half_life_days), rounded to 3 decimals.
// A node exactly one half-life old scores 0.5. The score is monotonically
// non-increasing in age for a fixed half-life.
func Freshness(createdAt time.Time, halfLifeDays int, now time.Time) float64 {
	if halfLifeDays <= 0 {
		halfLifeDays = DefaultHalfLifeDays
	}
	ageDays := now.Sub(createdAt).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	score := math.Pow(2, -ageDays/float64(halfLifeDays))
	return math.Round(score*1000) / 1000
}

// NodeFreshness computes the current freshness for a node, falling back to
// the stored snapshot value when the node has no creation timestamp.
func NodeFreshness(n *Node, now time.Time) float64 {
	if n.CreatedAt.IsZero() {
		return n.Freshness
	}
	return Freshness(n.CreatedAt, n.HalfLifeDays, now)
}

// RefreshScores recomputes every node's freshness in place. Stores call it
// at snapshot load so serving paths never see a stale stored score.
func RefreshScores(nodes []Node, now time.Time) {
	for i := range nodes {
		nodes[i].Freshness = NodeFreshness(&nodes[i], now)
	}
}

// StaleUnder reports whether the given freshness score falls below threshold.
func StaleUnder(score, threshold float64) bool {
	return score < threshold
}

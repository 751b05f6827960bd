package risk

import (
	"math"
	"sort"
)

// Rank returns the scores sorted by risk, highest first, with 1-based ranks.
// Ties keep their input order and NaN risks go last.
func Rank(scores []VendorScore) []VendorScore {
	out := append([]VendorScore(nil), scores...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].RiskIndex, out[j].RiskIndex
		if math.IsNaN(a) {
			return false
		}
		if math.IsNaN(b) {
			return true
		}
		return a > b
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRank(t *testing.T) {
	scores := []VendorScore{
		{VendorCode: "a", RiskIndex: 10},
		{VendorCode: "b", RiskIndex: math.NaN()},
		{VendorCode: "c", RiskIndex: 55.5},
		{VendorCode: "d", RiskIndex: 10},
		{VendorCode: "e", RiskIndex: -3},
	}
	ranked := Rank(scores)

	var codes []string
	for i, s := range ranked {
		codes = append(codes, s.VendorCode)
		assert.Equal(t, i+1, s.Rank)
	}
	assert.Equal(t, []string{"c", "a", "d", "e", "b"}, codes)
	assert.Equal(t, 0, scores[0].Rank, "input must not be modified")
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank(nil))
}

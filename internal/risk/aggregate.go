// Package risk groups predicted orders by vendor and computes the supplier
// risk index:
//
//	raw  = rate_on_time × confidence_mean × rate_value / rate_load
//	risk = (1 − raw) × 100
//
// rate_value is NaN when a vendor's total net value is zero, and risk is not
// clamped, so it may fall below 0 or exceed 100.
package risk

import (
	"math"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/gmlima14/irf/internal/loadref"
	"github.com/gmlima14/irf/internal/orders"
)

const (
	// loadFloor is the reference load at or below which no load penalty applies.
	loadFloor   = 2.0
	maxRateLoad = 1.5
)

// VendorScore is one vendor's aggregate. Float fields are rounded to two
// decimals; NaN is preserved.
type VendorScore struct {
	Rank       int
	VendorCode string
	VendorName string

	OnTimeCount int
	LateCount   int
	TotalCount  int

	ConfidenceMean float64
	ValueTotal     decimal.Decimal
	ValueOnTime    decimal.Decimal
	ValueLate      decimal.Decimal

	// LoadReference is nil when the vendor has no reference entry.
	LoadReference *float64
	// LoadDisplay is the integer part of the rounded reference, 0 below 1.
	LoadDisplay int

	RateOnTime float64
	RateValue  float64
	RateLoad   float64
	RawIndex   float64
	RiskIndex  float64
}

type group struct {
	score   VendorScore
	confSum float64
}

// Aggregate builds one VendorScore per vendor code in vendor code order.
// Orders without a prediction are skipped. ref may be nil.
func Aggregate(predicted []orders.Order, ref loadref.Lookup) []VendorScore {
	groups := make(map[string]*group)
	var codes []string
	for _, o := range predicted {
		if o.Prediction == nil {
			continue
		}
		g, ok := groups[o.VendorCode]
		if !ok {
			g = &group{score: VendorScore{
				VendorCode:  o.VendorCode,
				VendorName:  o.VendorName,
				ValueTotal:  decimal.Zero,
				ValueOnTime: decimal.Zero,
				ValueLate:   decimal.Zero,
			}}
			groups[o.VendorCode] = g
			codes = append(codes, o.VendorCode)
		}

		s := &g.score
		s.TotalCount++
		s.ValueTotal = s.ValueTotal.Add(o.NetValue)
		if o.Prediction.Label == orders.LabelOnTime {
			s.OnTimeCount++
			s.ValueOnTime = s.ValueOnTime.Add(o.NetValue)
		} else {
			s.LateCount++
			s.ValueLate = s.ValueLate.Add(o.NetValue)
		}
		g.confSum += o.Prediction.Confidence
	}

	sort.Slice(codes, func(i, j int) bool { return lessVendorCode(codes[i], codes[j]) })

	out := make([]VendorScore, 0, len(codes))
	for _, code := range codes {
		g := groups[code]
		s := g.score

		if s.TotalCount > 0 {
			s.RateOnTime = float64(s.OnTimeCount) / float64(s.TotalCount)
			s.ConfidenceMean = g.confSum / float64(s.TotalCount)
		}
		s.RateValue = valueRate(s.ValueOnTime, s.ValueTotal)

		if ref != nil {
			if v, ok := ref.Load(code); ok {
				load := v
				s.LoadReference = &load
			}
		}
		s.RateLoad = LoadRate(s.TotalCount, s.LoadReference)

		s.RawIndex = s.RateOnTime * s.ConfidenceMean * s.RateValue / s.RateLoad
		s.RiskIndex = (1 - s.RawIndex) * 100

		out = append(out, roundScore(s))
	}
	return out
}

// LoadRate penalizes vendors with more open orders than their historical
// average, capped at 1.5. References at or below 2 never penalize.
func LoadRate(total int, reference *float64) float64 {
	if reference == nil || math.IsNaN(*reference) || *reference <= loadFloor {
		return 1
	}
	return clamp(float64(total) / *reference, 1, maxRateLoad)
}

// MissingReference counts vendors that had no reference load.
func MissingReference(scores []VendorScore) int {
	n := 0
	for _, s := range scores {
		if s.LoadReference == nil {
			n++
		}
	}
	return n
}

func valueRate(onTime, total decimal.Decimal) float64 {
	if total.IsZero() {
		return math.NaN()
	}
	return onTime.InexactFloat64() / total.InexactFloat64()
}

func roundScore(s VendorScore) VendorScore {
	s.ConfidenceMean = Round2(s.ConfidenceMean)
	s.ValueTotal = s.ValueTotal.RoundBank(2)
	s.ValueOnTime = s.ValueOnTime.RoundBank(2)
	s.ValueLate = s.ValueLate.RoundBank(2)
	s.RateOnTime = Round2(s.RateOnTime)
	s.RateValue = Round2(s.RateValue)
	s.RateLoad = Round2(s.RateLoad)
	s.RawIndex = Round2(s.RawIndex)
	s.RiskIndex = Round2(s.RiskIndex)

	s.LoadDisplay = 0
	if s.LoadReference != nil {
		rounded := Round2(*s.LoadReference)
		s.LoadReference = &rounded
		if rounded >= 1 {
			s.LoadDisplay = int(rounded)
		}
	}
	return s
}

// Round2 rounds to two decimals, ties to even on the scaled value.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return math.RoundToEven(x*100) / 100
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// lessVendorCode orders integer codes numerically ahead of all other codes,
// which compare as strings.
func lessVendorCode(a, b string) bool {
	ai, aErr := strconv.ParseInt(a, 10, 64)
	bi, bErr := strconv.ParseInt(b, 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		if ai != bi {
			return ai < bi
		}
		return a < b
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	}
	return a < b
}

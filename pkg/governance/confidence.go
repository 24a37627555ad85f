package governance

import (
	"math"

	"github.com/assafkip/spanforge/pkg/backtest"
)

// Score computes a composite confidence score from backtest metrics,
// rounded to three places. False positives carry four times the weight of
// true positives, and the whole score is scaled down below 100 samples so
// a tiny corpus can never produce high confidence.
func Score(m backtest.Metric) float64 {
	base := math.Max(0, math.Min(1, 1-m.FalsePositiveRate))
	sampleFactor := math.Min(1, float64(m.SamplesTested)/100)
	return round3((base*0.8 + m.TruePositiveRate*0.2) * sampleFactor)
}

func round3(x float64) float64 {
	return math.Round(x*1e3) / 1e3
}

// Tier is one risk tier threshold pair. A candidate lands in a tier when
// its confidence is at least MinConfidence and its FPR is at most MaxFPR.
type Tier struct {
	Name          string  `json:"name" yaml:"name"`
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence"`
	MaxFPR        float64 `json:"max_fpr" yaml:"max_fpr"`
}

// DefaultTiers returns the standard three tiers, strictly ordered from
// least to most permissive. Candidates that clear none of them get no
// tier at all, which downstream governance escalates.
func DefaultTiers() []Tier {
	return []Tier{
		{Name: "blocking", MinConfidence: 0.9, MaxFPR: 0.002},
		{Name: "hunting", MinConfidence: 0.7, MaxFPR: 0.05},
		{Name: "enrichment", MinConfidence: 0.4, MaxFPR: 0.1},
	}
}

// TierFor walks the policy tiers in order and returns the first tier the
// (confidence, fpr) pair qualifies for, or "" when none match.
func TierFor(confidence, fpr float64, p Policy) string {
	tiers := p.Tiers
	if len(tiers) == 0 {
		tiers = DefaultTiers()
	}
	for _, t := range tiers {
		if confidence >= t.MinConfidence && fpr <= t.MaxFPR {
			return t.Name
		}
	}
	return ""
}

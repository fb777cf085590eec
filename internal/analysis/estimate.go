package analysis

import (
	"math"

	"github.com/standardbeagle/auditgraph/internal/lang"
)

// commentSaturation scales the comment-density progress so that the
// tanh curve reaches ~0.99 of the benefit cap at the full-benefit
// density (tanh(2.646) ~= 0.99).
const commentSaturation = 2.646

// minEffortFactor floors the combined adjustment; documentation and
// simplicity can halve review time at most.
const minEffortFactor = 0.5

// EstimateHours converts normalized size and complexity into estimated
// review hours. Shared by the full-file and diff analyzers.
//
// Complexity above the language midpoint increases review time along a
// tanh curve (no hard knee), capped asymmetrically: complexity costs
// more than simplicity saves. Comment density reduces review time up
// to a cap, with near-zero benefit below the density floor.
func EstimateHours(p *lang.Profile, nloc int, normalizedComplexity, commentDensity float64) float64 {
	if nloc <= 0 {
		return 0
	}

	baseHours := float64(nloc) / p.BaseRateNlocPerDay * 8

	delta := normalizedComplexity - p.ComplexityMidpoint
	shape := math.Tanh(delta / p.ComplexitySteepness)
	var complexityAdj float64
	if shape >= 0 {
		complexityAdj = shape * p.ComplexityPenaltyCap
	} else {
		complexityAdj = shape * p.ComplexityBenefitCap
	}

	progress := math.Max(0, commentDensity) / math.Max(1, p.CommentFullBenefitDensity)
	commentAdj := math.Tanh(progress*commentSaturation) * p.CommentBenefitCap

	factor := 1 + complexityAdj - commentAdj
	if factor < minEffortFactor {
		factor = minEffortFactor
	}
	if max := 1 + p.ComplexityPenaltyCap; factor > max {
		factor = max
	}

	return round2(baseHours * factor)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

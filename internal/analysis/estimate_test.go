package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/auditgraph/internal/lang"
)

func testProfile() *lang.Profile {
	return &lang.Profile{
		LanguageID:                "go",
		BaseRateNlocPerDay:        400,
		ComplexityMidpoint:        25,
		ComplexitySteepness:       15,
		ComplexityBenefitCap:      0.2,
		ComplexityPenaltyCap:      0.5,
		CommentFullBenefitDensity: 20,
		CommentBenefitCap:         0.2,
	}
}

func TestEstimateHoursZeroSize(t *testing.T) {
	p := testProfile()
	assert.Zero(t, EstimateHours(p, 0, 50, 10))
	assert.Zero(t, EstimateHours(p, -5, 0, 0))
}

func TestEstimateHoursNeutralAtMidpoint(t *testing.T) {
	p := testProfile()
	// At the complexity midpoint with no comments both adjustments are
	// zero, so the estimate is the raw base rate.
	got := EstimateHours(p, 400, p.ComplexityMidpoint, 0)
	assert.InDelta(t, 8.0, got, 0.001)
}

func TestEstimateHoursComplexityMonotonic(t *testing.T) {
	p := testProfile()
	low := EstimateHours(p, 400, 5, 0)
	mid := EstimateHours(p, 400, p.ComplexityMidpoint, 0)
	high := EstimateHours(p, 400, 80, 0)

	assert.Less(t, low, mid)
	assert.Greater(t, high, mid)
}

func TestEstimateHoursPenaltyCapped(t *testing.T) {
	p := testProfile()
	base := EstimateHours(p, 400, p.ComplexityMidpoint, 0)

	// Extreme complexity saturates at 1 + penalty cap times the base.
	extreme := EstimateHours(p, 400, 100000, 0)
	require.LessOrEqual(t, extreme, base*(1+p.ComplexityPenaltyCap)+0.01)
	assert.InDelta(t, base*(1+p.ComplexityPenaltyCap), extreme, 0.05)
}

func TestEstimateHoursCommentBenefitSaturates(t *testing.T) {
	p := testProfile()
	none := EstimateHours(p, 400, p.ComplexityMidpoint, 0)
	full := EstimateHours(p, 400, p.ComplexityMidpoint, p.CommentFullBenefitDensity)
	beyond := EstimateHours(p, 400, p.ComplexityMidpoint, p.CommentFullBenefitDensity*5)

	assert.Less(t, full, none)
	// Past the full-benefit density extra comments buy almost nothing.
	assert.InDelta(t, full, beyond, 0.1)
	// The benefit never exceeds the cap.
	assert.GreaterOrEqual(t, beyond, none*(1-p.CommentBenefitCap)-0.01)
}

func TestEstimateHoursFloor(t *testing.T) {
	p := testProfile()
	p.ComplexityBenefitCap = 0.4
	p.CommentBenefitCap = 0.4

	// Stacked benefits bottom out at half the base effort.
	base := EstimateHours(p, 400, p.ComplexityMidpoint, 0)
	floored := EstimateHours(p, 400, 0, 1000)
	assert.GreaterOrEqual(t, floored, base*0.5-0.01)
}

func TestEstimateHoursDeterministic(t *testing.T) {
	p := testProfile()
	first := EstimateHours(p, 123, 37.5, 12.25)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, EstimateHours(p, 123, 37.5, 12.25))
	}
}

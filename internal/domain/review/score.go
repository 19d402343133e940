package review

import (
	"math"

	"github.com/shopspring/decimal"
)

var (
	minRating = decimal.Zero
	maxRating = decimal.NewFromInt(10)
)

// ClampRating bounds a supervisor rating to [0, 10].
func ClampRating(v decimal.Decimal) decimal.Decimal {
	if v.LessThan(minRating) {
		return minRating
	}
	if v.GreaterThan(maxRating) {
		return maxRating
	}
	return v
}

// RatingFromInput converts a client supplied rating. Missing or non-finite
// values become 0, everything else is clamped.
func RatingFromInput(v *float64) decimal.Decimal {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return decimal.Zero
	}
	return ClampRating(decimal.NewFromFloat(*v).Round(2))
}

// ScoreSummary aggregates the supervisor ratings of a review.
type ScoreSummary struct {
	AverageRating decimal.Decimal
	WeightedScore decimal.Decimal
	RatedCount    int
	TotalCount    int
	HasAllRatings bool
}

// Summarize computes the average rating of rated KPIs and the weight-adjusted
// score sum(weight * rating) / 100, both rounded to one decimal.
func Summarize(kpis []KPI) ScoreSummary {
	s := ScoreSummary{
		AverageRating: decimal.Zero,
		WeightedScore: decimal.Zero,
		TotalCount:    len(kpis),
	}

	sum := decimal.Zero
	weighted := decimal.Zero
	for _, k := range kpis {
		if !k.SupervisorRating.Valid {
			continue
		}
		s.RatedCount++
		sum = sum.Add(k.SupervisorRating.Decimal)
		weighted = weighted.Add(k.SupervisorRating.Decimal.Mul(decimal.NewFromInt(int64(k.Weight))))
	}

	if s.RatedCount > 0 {
		s.AverageRating = sum.Div(decimal.NewFromInt(int64(s.RatedCount))).Round(1)
		s.WeightedScore = weighted.Div(decimal.NewFromInt(RequiredWeightTotal)).Round(1)
	}
	s.HasAllRatings = s.TotalCount > 0 && s.RatedCount == s.TotalCount

	return s
}

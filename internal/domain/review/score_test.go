package review

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRatingFromInput(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name string
		in   *float64
		want string
	}{
		{"nil", nil, "0"},
		{"nan", f(math.NaN()), "0"},
		{"inf", f(math.Inf(1)), "0"},
		{"negative", f(-3), "0"},
		{"too high", f(12.5), "10"},
		{"in range", f(7.456), "7.46"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RatingFromInput(tt.in)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestSummarize(t *testing.T) {
	kpis := []KPI{
		{Weight: 33, SupervisorRating: NullRating(decimal.NewFromInt(8))},
		{Weight: 33, SupervisorRating: NullRating(decimal.NewFromInt(6))},
		{Weight: 34},
	}

	s := Summarize(kpis)
	assert.Equal(t, 2, s.RatedCount)
	assert.Equal(t, 3, s.TotalCount)
	assert.False(t, s.HasAllRatings)
	assert.True(t, s.AverageRating.Equal(decimal.NewFromInt(7)))
	// (8*33 + 6*33) / 100 = 4.62
	assert.True(t, s.WeightedScore.Equal(decimal.RequireFromString("4.6")))

	kpis[2].SupervisorRating = NullRating(decimal.NewFromInt(10))
	s = Summarize(kpis)
	assert.True(t, s.HasAllRatings)
	// (264 + 198 + 340) / 100 = 8.02
	assert.True(t, s.WeightedScore.Equal(decimal.RequireFromString("8")))

	empty := Summarize(nil)
	assert.True(t, empty.AverageRating.IsZero())
	assert.False(t, empty.HasAllRatings)
}

func TestDefaults(t *testing.T) {
	kpis := DefaultKPIs("r-1", mustDate("2025-03-10"))
	assert.Equal(t, RequiredWeightTotal, TotalWeight(kpis))
	for i, k := range kpis {
		assert.Equal(t, i, k.Position)
		assert.Equal(t, 0, *k.CompletionPercentage)
		assert.False(t, k.SupervisorRating.Valid)
	}
	*kpis[0].CompletionPercentage = 50
	assert.Equal(t, 0, *kpis[1].CompletionPercentage)

	skills := DefaultSkillEvaluations("r-1")
	assert.Len(t, skills, len(DefaultSkills))
	for _, s := range skills {
		assert.Equal(t, SkillLevelMedium, s.Level)
		assert.True(t, IsCatalogSkill(s.SkillName))
	}
	assert.False(t, IsCatalogSkill("Cocina"))
}

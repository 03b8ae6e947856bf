// internal/assessment/engine_test.go
package assessment

import (
	"testing"

	"funnel-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

func answersWithValue(value int) models.AnswerSet {
	set := make(models.AnswerSet, 0, len(models.QuestionCatalog))
	for questionID := range models.QuestionCatalog {
		set = append(set, models.Answer{QuestionID: questionID, Value: value})
	}
	return set
}

// ==========================
// Scoring Tests
// ==========================

func TestScore_AllFives(t *testing.T) {
	result, err := Score(answersWithValue(5))
	assert.NoError(t, err)
	assert.Equal(t, 100, result.OverallScore)
	for _, category := range models.Categories {
		assert.Equal(t, 100, result.CategoryScores[category])
	}
}

func TestScore_AllOnes(t *testing.T) {
	result, err := Score(answersWithValue(1))
	assert.NoError(t, err)
	assert.Equal(t, 25, result.OverallScore)
	for _, category := range models.Categories {
		assert.Equal(t, 25, result.CategoryScores[category])
	}
}

func TestScore_Deterministic(t *testing.T) {
	set := models.AnswerSet{
		{QuestionID: "q_content_volume", Value: 4},
		{QuestionID: "q_lead_capture", Value: 2},
		{QuestionID: "q_report_cadence", Value: 5},
		{QuestionID: "q_workflow_sops", Value: 1},
	}

	first, err := Score(set)
	assert.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := Score(set)
		assert.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestScore_MissingAnswersDefaultToNeutral(t *testing.T) {
	// One answered question; everything else scores as the neutral 3.
	set := models.AnswerSet{
		{QuestionID: "q_content_volume", Value: 3},
	}

	result, err := Score(set)
	assert.NoError(t, err)

	// Every category averages exactly 3 -> 75 on the 0-100 scale.
	for _, category := range models.Categories {
		assert.Equal(t, 75, result.CategoryScores[category])
	}
	assert.Equal(t, 75, result.OverallScore)
}

func TestScore_UnknownQuestionIDsIgnored(t *testing.T) {
	set := append(answersWithValue(5), models.Answer{QuestionID: "q_does_not_exist", Value: 5})

	result, err := Score(set)
	assert.NoError(t, err)
	assert.Equal(t, 100, result.OverallScore)
}

func TestScore_BoundsHold(t *testing.T) {
	for value := 1; value <= 5; value++ {
		result, err := Score(answersWithValue(value))
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, result.OverallScore, 0)
		assert.LessOrEqual(t, result.OverallScore, 100)
		for _, category := range models.Categories {
			assert.GreaterOrEqual(t, result.CategoryScores[category], 0)
			assert.LessOrEqual(t, result.CategoryScores[category], 100)
		}
	}
}

func TestScore_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		set  models.AnswerSet
	}{
		{
			name: "empty set",
			set:  models.AnswerSet{},
		},
		{
			name: "value below range",
			set:  models.AnswerSet{{QuestionID: "q_content_volume", Value: 0}},
		},
		{
			name: "value above range",
			set:  models.AnswerSet{{QuestionID: "q_content_volume", Value: 6}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Score(tt.set)
			assert.Error(t, err)
		})
	}
}

// ==========================
// Tier Classification Tests
// ==========================

func TestClassifyTier_Rules(t *testing.T) {
	tests := []struct {
		name      string
		score     int
		qualifies bool
		want      models.Tier
	}{
		{"priority at threshold", 71, false, models.TierPriorityIntegration},
		{"priority ignores flag", 95, false, models.TierPriorityIntegration},
		{"qualified below threshold", 70, true, models.TierCoCreatorQualified},
		{"nurture below threshold", 70, false, models.TierNurtureWithGuides},
		{"nurture at zero", 0, false, models.TierNurtureWithGuides},
		{"qualified at zero", 0, true, models.TierCoCreatorQualified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTier(tt.score, tt.qualifies))
		})
	}
}

func TestClassifyTier_MonotonicInScore(t *testing.T) {
	for _, qualifies := range []bool{false, true} {
		prevRank := -1
		for score := 0; score <= 100; score++ {
			tier := ClassifyTier(score, qualifies)
			rank, err := tier.Rank()
			assert.NoError(t, err)
			assert.GreaterOrEqual(t, rank, prevRank, "tier rank regressed at score %d", score)
			prevRank = rank
		}
	}
}

// ==========================
// Recommendation Tests
// ==========================

func TestRecommend_AllWeakCategories(t *testing.T) {
	scores := map[models.Category]int{}
	for _, category := range models.Categories {
		scores[category] = 25
	}

	recs, opportunities := Recommend(scores, 25)

	// 4 weak categories + 2 universal items, capped at 6.
	assert.Len(t, recs, 6)
	assert.Equal(t, 13, opportunities)

	// The universal items stay at the tail.
	assert.Empty(t, recs[4].Category)
	assert.Empty(t, recs[5].Category)
}

func TestRecommend_WeakestFirst(t *testing.T) {
	scores := map[models.Category]int{
		models.CategoryClientReporting:  55,
		models.CategoryContentCreation:  30,
		models.CategoryLeadManagement:   80,
		models.CategoryWorkflowMaturity: 45,
	}

	recs, _ := Recommend(scores, 52)

	assert.Len(t, recs, 5)
	assert.Equal(t, models.CategoryContentCreation, recs[0].Category)
	assert.Equal(t, models.CategoryWorkflowMaturity, recs[1].Category)
	assert.Equal(t, models.CategoryClientReporting, recs[2].Category)
}

func TestRecommend_TieBrokenByCategoryOrder(t *testing.T) {
	scores := map[models.Category]int{
		models.CategoryClientReporting:  40,
		models.CategoryContentCreation:  40,
		models.CategoryLeadManagement:   90,
		models.CategoryWorkflowMaturity: 90,
	}

	recs, _ := Recommend(scores, 65)

	assert.Equal(t, models.CategoryClientReporting, recs[0].Category)
	assert.Equal(t, models.CategoryContentCreation, recs[1].Category)
}

func TestRecommend_NoWeakCategories(t *testing.T) {
	scores := map[models.Category]int{}
	for _, category := range models.Categories {
		scores[category] = 100
	}

	recs, opportunities := Recommend(scores, 100)

	// Only the universal items remain.
	assert.Len(t, recs, 2)
	assert.Equal(t, 5, opportunities)
}

func TestOpportunityCount_FloorAndMonotonicity(t *testing.T) {
	prev := opportunityBase
	for score := 0; score <= 100; score++ {
		count := opportunityCount(score)
		assert.GreaterOrEqual(t, count, opportunityFloor)
		assert.LessOrEqual(t, count, prev)
		prev = count
	}
}

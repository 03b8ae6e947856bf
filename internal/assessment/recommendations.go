// internal/assessment/recommendations.go
package assessment

import (
	"sort"

	"funnel-workers/internal/models"
)

const (
	// weakCategoryThreshold: categories scoring below this get a targeted item.
	weakCategoryThreshold = 60

	maxCategoryItems = 4
	maxItems         = 6

	opportunityBase  = 15
	opportunityFloor = 3
)

// categoryRecommendations holds the targeted item per weak category.
var categoryRecommendations = map[models.Category]models.Recommendation{
	models.CategoryContentCreation: {
		Category: models.CategoryContentCreation,
		Title:    "Automate your content pipeline",
		Detail:   "Batch-produce and schedule posts from a single brand brief instead of writing each one by hand.",
	},
	models.CategoryLeadManagement: {
		Category: models.CategoryLeadManagement,
		Title:    "Put lead follow-up on rails",
		Detail:   "Route every captured lead into an automated follow-up sequence so none go cold in the inbox.",
	},
	models.CategoryClientReporting: {
		Category: models.CategoryClientReporting,
		Title:    "Stop assembling reports by hand",
		Detail:   "Pull campaign metrics into a templated report that sends itself on a fixed cadence.",
	},
	models.CategoryWorkflowMaturity: {
		Category: models.CategoryWorkflowMaturity,
		Title:    "Document and trigger your handoffs",
		Detail:   "Turn recurring handoffs into written SOPs with automated triggers between steps.",
	},
}

// opportunityRecommendations are always appended, independent of scores.
var opportunityRecommendations = []models.Recommendation{
	{
		Title:  "Map your top automation opportunities",
		Detail: "Walk your weekly workload once and mark every step a machine could do without you.",
	},
	{
		Title:  "Start with one connected workflow",
		Detail: "Pick a single intake-to-delivery path and automate it end to end before widening scope.",
	},
}

// Recommend builds the ordered recommendation list and the opportunity count
// for one scored assessment. Weak categories come first, ascending by score
// with ties broken by the fixed category order, capped at four targeted items;
// the universal opportunity items follow. The total is capped at six, dropping
// the lowest-priority tail first.
func Recommend(categoryScores map[models.Category]int, overallScore int) ([]models.Recommendation, int) {
	weak := make([]models.Category, 0, len(models.Categories))
	for _, category := range models.Categories {
		if categoryScores[category] < weakCategoryThreshold {
			weak = append(weak, category)
		}
	}

	// models.Categories is already in fixed lexical order, so a stable sort
	// by score preserves the name tie-break.
	sort.SliceStable(weak, func(i, j int) bool {
		return categoryScores[weak[i]] < categoryScores[weak[j]]
	})

	if len(weak) > maxCategoryItems {
		weak = weak[:maxCategoryItems]
	}

	recs := make([]models.Recommendation, 0, len(weak)+len(opportunityRecommendations))
	for _, category := range weak {
		recs = append(recs, categoryRecommendations[category])
	}
	recs = append(recs, opportunityRecommendations...)

	if len(recs) > maxItems {
		recs = recs[:maxItems]
	}

	return recs, opportunityCount(overallScore)
}

// opportunityCount is monotonically non-increasing in score with a floor of 3.
func opportunityCount(overallScore int) int {
	count := opportunityBase - overallScore/10
	if count < opportunityFloor {
		return opportunityFloor
	}
	return count
}

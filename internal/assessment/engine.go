// internal/assessment/engine.go
// Package assessment implements the deterministic scoring, classification and
// recommendation engine behind the readiness funnel. Everything here is a pure
// function of its inputs: no I/O, no clocks, no hidden state.
package assessment

import (
	"fmt"
	"math"

	"funnel-workers/internal/common/errors"
	"funnel-workers/internal/models"
)

// ScoreResult holds the numeric outcome of scoring one AnswerSet.
type ScoreResult struct {
	OverallScore   int
	CategoryScores map[models.Category]int
}

// Score converts an AnswerSet into category scores and an overall score on a
// 0-100 scale. Missing required answers score as the neutral value 3; that is
// a documented policy, not silent data loss. Answers for question IDs outside
// the catalog are ignored.
//
// Identical input always produces identical output. Fails only when the set
// is empty or contains a value outside the 1-5 range.
func Score(set models.AnswerSet) (*ScoreResult, error) {
	if len(set) == 0 {
		return nil, errors.NewValidationFailedError("answer set is empty")
	}

	answered := make(map[string]int, len(set))
	for _, a := range set {
		if a.Value < models.AnswerValueMin || a.Value > models.AnswerValueMax {
			return nil, errors.NewValidationFailedError(
				fmt.Sprintf("answer %s has out-of-range value %d", a.QuestionID, a.Value))
		}
		if _, known := models.QuestionCatalog[a.QuestionID]; !known {
			continue
		}
		// First submission wins for a duplicated question ID; the set is
		// ordered and immutable once submitted.
		if _, seen := answered[a.QuestionID]; !seen {
			answered[a.QuestionID] = a.Value
		}
	}

	sums := make(map[models.Category]int, len(models.Categories))
	counts := make(map[models.Category]int, len(models.Categories))
	for questionID, category := range models.QuestionCatalog {
		value, ok := answered[questionID]
		if !ok {
			value = models.NeutralAnswerValue
		}
		sums[category] += value
		counts[category]++
	}

	categoryScores := make(map[models.Category]int, len(models.Categories))
	total := 0
	for _, category := range models.Categories {
		avg := float64(sums[category]) / float64(counts[category])
		score := clamp(int(math.Round(avg*25)), 0, 100)
		categoryScores[category] = score
		total += score
	}

	overall := int(math.Round(float64(total) / float64(len(models.Categories))))

	return &ScoreResult{
		OverallScore:   overall,
		CategoryScores: categoryScores,
	}, nil
}

// ClassifyTier maps an overall score and the externally supplied qualification
// flag to a readiness tier. Rules apply in this fixed order, lower bounds
// inclusive:
//
//	score >= 71            -> PriorityIntegration
//	qualifies == true      -> CoCreatorQualified
//	otherwise              -> NurtureWithGuides
//
// The qualifies flag comes from the intake step; the classifier never guesses it.
func ClassifyTier(overallScore int, qualifies bool) models.Tier {
	if overallScore >= priorityThreshold {
		return models.TierPriorityIntegration
	}
	if qualifies {
		return models.TierCoCreatorQualified
	}
	return models.TierNurtureWithGuides
}

// priorityThreshold is the inclusive lower bound for PriorityIntegration.
const priorityThreshold = 71

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// internal/workers/assessment/generate-recommendations/models.go
package generaterecommendations

import "funnel-workers/internal/models"

type Input struct {
	AssessmentID   string         `json:"assessmentId"`
	OverallScore   int            `json:"overallScore"`
	CategoryScores map[string]int `json:"categoryScores"`
}

type Output struct {
	AssessmentID     string                  `json:"assessmentId"`
	Recommendations  []models.Recommendation `json:"recommendations"`
	OpportunityCount int                     `json:"automationOpportunityCount"`
}

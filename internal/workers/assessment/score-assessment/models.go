// internal/workers/assessment/score-assessment/models.go
package scoreassessment

import "funnel-workers/internal/models"

type Input struct {
	AssessmentID string           `json:"assessmentId"`
	Answers      models.AnswerSet `json:"answers"`
}

type Output struct {
	AssessmentID   string         `json:"assessmentId"`
	OverallScore   int            `json:"overallScore"`
	CategoryScores map[string]int `json:"categoryScores"`
}

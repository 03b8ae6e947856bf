// internal/workers/assessment/create-assessment-record/models.go
package createassessmentrecord

import "funnel-workers/internal/models"

type Input struct {
	VisitorRef       string                  `json:"visitorRef"`
	OverallScore     int                     `json:"overallScore"`
	CategoryScores   map[string]int          `json:"categoryScores"`
	Tier             string                  `json:"tier"`
	Recommendations  []models.Recommendation `json:"recommendations"`
	OpportunityCount int                     `json:"automationOpportunityCount"`
}

type Output struct {
	AssessmentID     string `json:"assessmentId"`
	AssessmentStatus string `json:"assessmentStatus"`
	CreatedAt        string `json:"createdAt"`
}

// internal/workers/assessment/classify-tier/models.go
package classifytier

type Input struct {
	AssessmentID string `json:"assessmentId"`
	OverallScore int    `json:"overallScore"`
	// QualifiesFlag comes from the intake submission, never derived here.
	QualifiesFlag bool `json:"qualifiesFlag"`
}

type Output struct {
	AssessmentID string `json:"assessmentId"`
	Tier         string `json:"tier"`
}

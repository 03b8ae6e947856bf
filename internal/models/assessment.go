// internal/models/assessment.go
package models

import "fmt"

// Category identifies one of the four fixed assessment categories.
type Category string

const (
	CategoryContentCreation  Category = "content_creation"
	CategoryLeadManagement   Category = "lead_management"
	CategoryClientReporting  Category = "client_reporting"
	CategoryWorkflowMaturity Category = "workflow_maturity"
)

// Categories lists every category in its fixed lexical order. Recommendation
// tie-breaking depends on this order staying stable.
var Categories = []Category{
	CategoryClientReporting,
	CategoryContentCreation,
	CategoryLeadManagement,
	CategoryWorkflowMaturity,
}

// QuestionCatalog maps every required question ID to its category.
// Each question belongs to exactly one category.
var QuestionCatalog = map[string]Category{
	"q_content_volume":    CategoryContentCreation,
	"q_content_tools":     CategoryContentCreation,
	"q_content_reuse":     CategoryContentCreation,
	"q_lead_capture":      CategoryLeadManagement,
	"q_lead_followup":     CategoryLeadManagement,
	"q_lead_scoring":      CategoryLeadManagement,
	"q_report_cadence":    CategoryClientReporting,
	"q_report_assembly":   CategoryClientReporting,
	"q_report_delivery":   CategoryClientReporting,
	"q_workflow_handoffs": CategoryWorkflowMaturity,
	"q_workflow_sops":     CategoryWorkflowMaturity,
	"q_workflow_tooling":  CategoryWorkflowMaturity,
}

// Answer value bounds on the 1-5 questionnaire scale.
const (
	AnswerValueMin = 1
	AnswerValueMax = 5

	// NeutralAnswerValue substitutes for a missing required answer.
	// Documented policy: absence scores as neutral, never as zero.
	NeutralAnswerValue = 3
)

// Answer is a single (questionId, value) pair from the intake form.
type Answer struct {
	QuestionID string `json:"questionId"`
	Value      int    `json:"value"`
}

// AnswerSet is the complete ordered response set for one assessment attempt.
// Immutable once submitted.
type AnswerSet []Answer

// Tier is the readiness classification bucket. Closed set; code that branches
// on Tier must enumerate all three values rather than fall through a default.
type Tier string

const (
	TierPriorityIntegration Tier = "priority_integration"
	TierCoCreatorQualified  Tier = "co_creator_qualified"
	TierNurtureWithGuides   Tier = "nurture_with_guides"
)

// Valid reports whether t is one of the three known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierPriorityIntegration, TierCoCreatorQualified, TierNurtureWithGuides:
		return true
	}
	return false
}

// Rank orders tiers for monotonicity checks: higher rank means higher
// readiness. Returns an error for unknown values instead of a silent default.
func (t Tier) Rank() (int, error) {
	switch t {
	case TierNurtureWithGuides:
		return 0, nil
	case TierCoCreatorQualified:
		return 1, nil
	case TierPriorityIntegration:
		return 2, nil
	}
	return 0, fmt.Errorf("unknown tier %q", string(t))
}

// Recommendation is one actionable item surfaced with an assessment result.
type Recommendation struct {
	Category Category `json:"category,omitempty"`
	Title    string   `json:"title"`
	Detail   string   `json:"detail"`
}

// AssessmentResult is the immutable outcome of scoring one AnswerSet.
type AssessmentResult struct {
	AssessmentID     string           `json:"assessmentId"`
	OverallScore     int              `json:"overallScore"`
	CategoryScores   map[Category]int `json:"categoryScores"`
	Tier             Tier             `json:"tier"`
	Recommendations  []Recommendation `json:"recommendations"`
	OpportunityCount int              `json:"automationOpportunityCount"`
}

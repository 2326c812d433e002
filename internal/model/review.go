package model

import "time"

// ReviewStatus is the review workflow state.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewReviewed ReviewStatus = "reviewed"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// Terminal reports whether the status closes the review cycle.
// A new finding requires a new assessment, not a reopened review.
func (s ReviewStatus) Terminal() bool {
	return s == ReviewApproved || s == ReviewRejected
}

// RiskAssessment is the reviewer's risk classification.
type RiskAssessment string

const (
	RiskLow      RiskAssessment = "low"
	RiskModerate RiskAssessment = "moderate"
	RiskHigh     RiskAssessment = "high"
	RiskCritical RiskAssessment = "critical"
)

// DefaultRisk maps a composite stress level to the risk classification a
// freshly created review starts with. A reviewer patch can override it.
func (l StressLevel) DefaultRisk() RiskAssessment {
	switch l {
	case StressSevere:
		return RiskCritical
	case StressHigh:
		return RiskHigh
	case StressModerate:
		return RiskModerate
	default:
		return RiskLow
	}
}

// Review is the human judgment attached to one assessment. AssessmentID is
// unique across all reviews: a second submission for the same assessment
// updates the existing record, never inserts a duplicate.
type Review struct {
	ID                 string         `json:"id" bson:"_id,omitempty"`
	AssessmentID       string         `json:"assessmentId" bson:"assessmentId"`
	ReviewerID         string         `json:"reviewerId" bson:"reviewerId"`
	Status             ReviewStatus   `json:"status" bson:"status"`
	ReviewScore        *float64       `json:"reviewScore,omitempty" bson:"reviewScore,omitempty"`
	RiskAssessment     RiskAssessment `json:"riskAssessment,omitempty" bson:"riskAssessment,omitempty"`
	Comments           string         `json:"comments,omitempty" bson:"comments,omitempty"`
	FlaggedForFollowUp bool           `json:"flaggedForFollowUp" bson:"flaggedForFollowUp"`
	FollowUpNotes      string         `json:"followUpNotes,omitempty" bson:"followUpNotes,omitempty"`
	ReviewedAt         *time.Time     `json:"reviewedAt,omitempty" bson:"reviewedAt,omitempty"`
	CreatedAt          time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// ReviewPatch carries only the fields a reviewer wants to change.
// Nil pointers mean "leave unchanged".
type ReviewPatch struct {
	Status             *ReviewStatus   `json:"status,omitempty"`
	ReviewScore        *float64        `json:"reviewScore,omitempty"`
	RiskAssessment     *RiskAssessment `json:"riskAssessment,omitempty"`
	Comments           *string         `json:"comments,omitempty"`
	FlaggedForFollowUp *bool           `json:"flaggedForFollowUp,omitempty"`
	FollowUpNotes      *string         `json:"followUpNotes,omitempty"`
}

// FlagOnly reports whether the patch touches nothing but the follow-up flag
// fields. Flag-only patches stay valid after a review reaches a terminal state.
func (p ReviewPatch) FlagOnly() bool {
	if p.FlaggedForFollowUp == nil && p.FollowUpNotes == nil {
		return false
	}
	return p.Status == nil && p.ReviewScore == nil && p.RiskAssessment == nil && p.Comments == nil
}

// PendingReviewEntry is one triage listing row: a completed assessment
// annotated with its review state, if any.
type PendingReviewEntry struct {
	Assessment   *Assessment  `json:"assessment"`
	HasReview    bool         `json:"hasReview"`
	ReviewStatus ReviewStatus `json:"reviewStatus,omitempty"`
	ReviewID     string       `json:"reviewId,omitempty"`
}

package model

import "time"

// AssessmentType selects which channels a submission carries.
type AssessmentType string

const (
	AssessmentStandard      AssessmentType = "standard"      // questionnaire only
	AssessmentComprehensive AssessmentType = "comprehensive" // questionnaire + sentiment
	AssessmentMultiModal    AssessmentType = "multi_modal"   // any combination incl. facial/voice
)

// AssessmentStatus is the assessment lifecycle state.
type AssessmentStatus string

const (
	AssessmentInProgress AssessmentStatus = "in_progress"
	AssessmentCompleted  AssessmentStatus = "completed"
	AssessmentCancelled  AssessmentStatus = "cancelled"
)

// StressLevel buckets the composite score into fixed bands.
type StressLevel string

const (
	StressLow      StressLevel = "low"      // [0,25)
	StressModerate StressLevel = "moderate" // [25,50)
	StressHigh     StressLevel = "high"     // [50,75)
	StressSevere   StressLevel = "severe"   // [75,100]
)

// SeverityRank orders stress levels for triage (higher is more severe).
func (l StressLevel) SeverityRank() int {
	switch l {
	case StressSevere:
		return 3
	case StressHigh:
		return 2
	case StressModerate:
		return 1
	default:
		return 0
	}
}

// RecommendationPriority orders recommendations by urgency.
type RecommendationPriority string

const (
	PriorityUrgent   RecommendationPriority = "urgent"
	PriorityHigh     RecommendationPriority = "high"
	PriorityModerate RecommendationPriority = "moderate"
	PriorityLow      RecommendationPriority = "low"
)

// Recommendation is one actionable suggestion derived from the composite.
type Recommendation struct {
	Priority RecommendationPriority `json:"priority" bson:"priority"`
	Text     string                 `json:"text" bson:"text"`
}

// Insights lists derived strengths, concerns and risk factors.
type Insights struct {
	Strengths   []string `json:"strengths" bson:"strengths"`
	Concerns    []string `json:"concerns" bson:"concerns"`
	RiskFactors []string `json:"riskFactors" bson:"riskFactors"`
}

// CompositeResult is the single aggregated result for one assessment.
// It is derived by the composite scorer and never edited directly.
type CompositeResult struct {
	OverallScore    float64            `json:"overallScore" bson:"overallScore"` // 0-100
	StressLevel     StressLevel        `json:"stressLevel" bson:"stressLevel"`
	Confidence      float64            `json:"confidence" bson:"confidence"` // 0-1
	CategoryScores  map[string]float64 `json:"categoryScores" bson:"categoryScores"`
	Insights        Insights           `json:"insights" bson:"insights"`
	Recommendations []Recommendation   `json:"recommendations" bson:"recommendations"`
}

// AssessmentMetadata records how the assessment was produced.
type AssessmentMetadata struct {
	DurationSec      int               `json:"durationSec,omitempty" bson:"durationSec,omitempty"`
	ProviderVersions map[string]string `json:"providerVersions,omitempty" bson:"providerVersions,omitempty"`
	ChannelCount     int               `json:"channelCount" bson:"channelCount"`
	FallbackChannels []string          `json:"fallbackChannels,omitempty" bson:"fallbackChannels,omitempty"`
}

// Assessment is the durable unit of work. Once Status is completed the record
// is append-only: corrections happen via a new assessment, never an edit.
type Assessment struct {
	ID             string             `json:"id" bson:"_id,omitempty"`
	UserID         string             `json:"userId" bson:"userId"`
	Type           AssessmentType     `json:"assessmentType" bson:"assessmentType"`
	Status         AssessmentStatus   `json:"status" bson:"status"`
	ModalityScores []ModalityScore    `json:"modalityScores,omitempty" bson:"modalityScores,omitempty"`
	Composite      *CompositeResult   `json:"composite,omitempty" bson:"composite,omitempty"`
	Metadata       AssessmentMetadata `json:"metadata" bson:"metadata"`
	CompletedAt    *time.Time         `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`

	// TriageRank is the stored severity ordinal used for triage sorting.
	// Internal to persistence; not exposed on the wire.
	TriageRank int `json:"-" bson:"triageRank,omitempty"`
}

// SubmitAssessmentRequest is the canonical submission payload. Responses are
// object-shaped (explicit per-question entries); at most one image frame and
// one audio clip per submission.
type SubmitAssessmentRequest struct {
	Type          AssessmentType `json:"type"`
	Responses     map[string]int `json:"responses,omitempty"`     // question key -> 0-3
	ImageFrame    string         `json:"imageFrame,omitempty"`    // base64 frame for facial channel
	AudioClip     string         `json:"audioClip,omitempty"`     // base64 clip for voice channel
	SentimentText string         `json:"sentimentText,omitempty"` // free text for sentiment channel
	DurationSec   int            `json:"durationSec,omitempty"`
}

// AssessmentSummary is a per-user rollup served from cache.
type AssessmentSummary struct {
	UserID            string              `json:"userId" bson:"userId"`
	TotalCompleted    int                 `json:"totalCompleted" bson:"totalCompleted"`
	AverageScore      float64             `json:"averageScore" bson:"averageScore"`
	LevelDistribution map[StressLevel]int `json:"levelDistribution" bson:"levelDistribution"`
	LatestScore       float64             `json:"latestScore" bson:"latestScore"`
	LatestLevel       StressLevel         `json:"latestLevel" bson:"latestLevel"`
	LatestAt          *time.Time          `json:"latestAt,omitempty" bson:"latestAt,omitempty"`
	UpdatedAt         time.Time           `json:"updatedAt" bson:"updatedAt"`
}

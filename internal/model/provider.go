package model

// Raw provider payloads, one per channel. These mirror what the external
// modality scoring provider returns; the adapter validates them at the
// boundary so downstream components only ever see well-typed ModalityScores.

// QuestionnaireProviderOutput is the provider's questionnaire scoring payload.
type QuestionnaireProviderOutput struct {
	Responses      map[string]int     `json:"responses"` // question key -> 0-3
	TotalScore     *float64           `json:"totalScore,omitempty"`
	Confidence     *float64           `json:"confidence,omitempty"`
	CategoryScores map[string]float64 `json:"categoryScores,omitempty"`
}

// FacialProviderOutput is the facial emotion model's payload.
type FacialProviderOutput struct {
	StressScore     *float64           `json:"stressScore,omitempty"` // 0-100
	DominantEmotion string             `json:"dominantEmotion,omitempty"`
	Emotions        map[string]float64 `json:"emotions,omitempty"`
	Confidence      *float64           `json:"confidence,omitempty"`
	FramesAnalyzed  int                `json:"framesAnalyzed,omitempty"`
}

// VoiceProviderOutput is the voice pattern model's payload.
type VoiceProviderOutput struct {
	StressScore *float64 `json:"stressScore,omitempty"` // 0-100
	Arousal     *float64 `json:"arousal,omitempty"`
	Tension     *float64 `json:"tension,omitempty"`
	EnergyLevel *float64 `json:"energyLevel,omitempty"`
	SpeechRate  *float64 `json:"speechRate,omitempty"`
	Confidence  *float64 `json:"confidence,omitempty"`
}

// SentimentProviderOutput is the text sentiment model's payload.
type SentimentProviderOutput struct {
	Label      string   `json:"label,omitempty"` // positive, negative, neutral
	Polarity   *float64 `json:"polarity,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	KeyPhrases []string `json:"keyPhrases,omitempty"`
}

// ProviderOutput bundles whichever channel payload a provider call produced.
// Exactly the field for the requested channel is expected to be non-nil.
type ProviderOutput struct {
	Questionnaire *QuestionnaireProviderOutput `json:"questionnaire,omitempty"`
	Facial        *FacialProviderOutput        `json:"facial,omitempty"`
	Voice         *VoiceProviderOutput         `json:"voice,omitempty"`
	Sentiment     *SentimentProviderOutput     `json:"sentiment,omitempty"`
	Version       string                       `json:"version,omitempty"`
}

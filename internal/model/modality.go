package model

import "time"

// Channel identifies one independent source of stress signal.
type Channel string

const (
	ChannelQuestionnaire Channel = "questionnaire"
	ChannelFacial        Channel = "facial"
	ChannelVoice         Channel = "voice"
	ChannelSentiment     Channel = "sentiment"
)

// AllChannels lists every supported channel in canonical order.
var AllChannels = []Channel{ChannelQuestionnaire, ChannelFacial, ChannelVoice, ChannelSentiment}

// Valid reports whether the channel is one of the supported values.
func (c Channel) Valid() bool {
	switch c {
	case ChannelQuestionnaire, ChannelFacial, ChannelVoice, ChannelSentiment:
		return true
	}
	return false
}

// QuestionnaireDetail carries DASS-21 subscale results for the questionnaire channel.
type QuestionnaireDetail struct {
	DepressionScore    int                `json:"depressionScore" bson:"depressionScore"`
	AnxietyScore       int                `json:"anxietyScore" bson:"anxietyScore"`
	StressScore        int                `json:"stressScore" bson:"stressScore"`
	DepressionSeverity string             `json:"depressionSeverity" bson:"depressionSeverity"`
	AnxietySeverity    string             `json:"anxietySeverity" bson:"anxietySeverity"`
	StressSeverity     string             `json:"stressSeverity" bson:"stressSeverity"`
	CategoryScores     map[string]float64 `json:"categoryScores,omitempty" bson:"categoryScores,omitempty"`
}

// FacialDetail carries emotion-model output for the facial channel.
type FacialDetail struct {
	DominantEmotion string             `json:"dominantEmotion" bson:"dominantEmotion"`
	Emotions        map[string]float64 `json:"emotions,omitempty" bson:"emotions,omitempty"`
	FramesAnalyzed  int                `json:"framesAnalyzed,omitempty" bson:"framesAnalyzed,omitempty"`
}

// VoiceDetail carries voice-pattern features for the voice channel.
type VoiceDetail struct {
	Arousal     float64 `json:"arousal" bson:"arousal"`
	Tension     float64 `json:"tension" bson:"tension"`
	EnergyLevel float64 `json:"energyLevel" bson:"energyLevel"`
	SpeechRate  float64 `json:"speechRate,omitempty" bson:"speechRate,omitempty"`
}

// SentimentDetail carries free-text sentiment output for the sentiment channel.
type SentimentDetail struct {
	Label      string   `json:"label" bson:"label"` // positive, negative, neutral
	Polarity   float64  `json:"polarity" bson:"polarity"`
	KeyPhrases []string `json:"keyPhrases,omitempty" bson:"keyPhrases,omitempty"`
}

// ModalityDetail is a closed tagged variant: exactly the field matching the
// owning ModalityScore's Channel is non-nil.
type ModalityDetail struct {
	Questionnaire *QuestionnaireDetail `json:"questionnaire,omitempty" bson:"questionnaire,omitempty"`
	Facial        *FacialDetail        `json:"facial,omitempty" bson:"facial,omitempty"`
	Voice         *VoiceDetail         `json:"voice,omitempty" bson:"voice,omitempty"`
	Sentiment     *SentimentDetail     `json:"sentiment,omitempty" bson:"sentiment,omitempty"`
}

// ModalityScore is the normalized output of one analysis channel.
type ModalityScore struct {
	Channel    Channel        `json:"channel" bson:"channel"`
	Score      float64        `json:"score" bson:"score"`           // 0-100
	Confidence float64        `json:"confidence" bson:"confidence"` // 0-1
	Detail     ModalityDetail `json:"detail" bson:"detail"`
	IsFallback bool           `json:"isFallback" bson:"isFallback"`
	ComputedAt time.Time      `json:"computedAt" bson:"computedAt"`
}

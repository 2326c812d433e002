// Package scoring turns heterogeneous, partially-present modality outputs
// into a single composite assessment result.
package scoring

import (
	"fmt"
	"time"

	"mstress/internal/dass"
	"mstress/internal/model"
)

// Default confidences substituted when a provider omits one.
const (
	defaultFacialConfidence    = 0.70
	defaultVoiceConfidence     = 0.65
	defaultSentimentConfidence = 0.60
)

// defaultEmotion is substituted when the facial model reports no dominant emotion.
const defaultEmotion = "neutral"

// Normalize converts one channel's raw provider payload into a ModalityScore.
// It is a pure transform: missing optional sub-fields get documented defaults,
// but a payload missing the channel's minimum required field fails with
// ErrMalformedProviderOutput so the caller can fall back for that channel.
func Normalize(channel model.Channel, raw *model.ProviderOutput, now time.Time) (*model.ModalityScore, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: empty payload for channel %s", ErrMalformedProviderOutput, channel)
	}

	switch channel {
	case model.ChannelQuestionnaire:
		return normalizeQuestionnaire(raw.Questionnaire, now)
	case model.ChannelFacial:
		return normalizeFacial(raw.Facial, now)
	case model.ChannelVoice:
		return normalizeVoice(raw.Voice, now)
	case model.ChannelSentiment:
		return normalizeSentiment(raw.Sentiment, now)
	default:
		return nil, fmt.Errorf("%w: unknown channel %q", ErrMalformedProviderOutput, channel)
	}
}

func normalizeQuestionnaire(out *model.QuestionnaireProviderOutput, now time.Time) (*model.ModalityScore, error) {
	if out == nil || len(out.Responses) == 0 {
		return nil, fmt.Errorf("%w: questionnaire responses missing", ErrMalformedProviderOutput)
	}

	// Even when the provider scored it, the local table is authoritative for
	// subscale detail; provider totals only override the headline score.
	result, err := dass.Score(out.Responses)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedProviderOutput, err)
	}

	score := result.Score100
	if out.TotalScore != nil {
		score = clampScore(*out.TotalScore)
	}

	confidence := 0.95
	if out.Confidence != nil {
		confidence = clampConfidence(*out.Confidence)
	}

	categories := out.CategoryScores
	if len(categories) == 0 {
		categories = result.CategoryScores()
	}

	return &model.ModalityScore{
		Channel:    model.ChannelQuestionnaire,
		Score:      score,
		Confidence: confidence,
		Detail: model.ModalityDetail{
			Questionnaire: &model.QuestionnaireDetail{
				DepressionScore:    result.Depression.Score,
				AnxietyScore:       result.Anxiety.Score,
				StressScore:        result.Stress.Score,
				DepressionSeverity: result.Depression.Severity,
				AnxietySeverity:    result.Anxiety.Severity,
				StressSeverity:     result.Stress.Severity,
				CategoryScores:     categories,
			},
		},
		ComputedAt: now,
	}, nil
}

func normalizeFacial(out *model.FacialProviderOutput, now time.Time) (*model.ModalityScore, error) {
	if out == nil || out.StressScore == nil {
		return nil, fmt.Errorf("%w: facial stress score missing", ErrMalformedProviderOutput)
	}

	emotion := out.DominantEmotion
	if emotion == "" {
		emotion = defaultEmotion
	}
	confidence := defaultFacialConfidence
	if out.Confidence != nil {
		confidence = clampConfidence(*out.Confidence)
	}

	return &model.ModalityScore{
		Channel:    model.ChannelFacial,
		Score:      clampScore(*out.StressScore),
		Confidence: confidence,
		Detail: model.ModalityDetail{
			Facial: &model.FacialDetail{
				DominantEmotion: emotion,
				Emotions:        out.Emotions,
				FramesAnalyzed:  out.FramesAnalyzed,
			},
		},
		ComputedAt: now,
	}, nil
}

func normalizeVoice(out *model.VoiceProviderOutput, now time.Time) (*model.ModalityScore, error) {
	if out == nil || out.StressScore == nil {
		return nil, fmt.Errorf("%w: voice stress score missing", ErrMalformedProviderOutput)
	}

	confidence := defaultVoiceConfidence
	if out.Confidence != nil {
		confidence = clampConfidence(*out.Confidence)
	}

	detail := &model.VoiceDetail{}
	if out.Arousal != nil {
		detail.Arousal = *out.Arousal
	}
	if out.Tension != nil {
		detail.Tension = *out.Tension
	}
	if out.EnergyLevel != nil {
		detail.EnergyLevel = *out.EnergyLevel
	}
	if out.SpeechRate != nil {
		detail.SpeechRate = *out.SpeechRate
	}

	return &model.ModalityScore{
		Channel:    model.ChannelVoice,
		Score:      clampScore(*out.StressScore),
		Confidence: confidence,
		Detail:     model.ModalityDetail{Voice: detail},
		ComputedAt: now,
	}, nil
}

func normalizeSentiment(out *model.SentimentProviderOutput, now time.Time) (*model.ModalityScore, error) {
	if out == nil || (out.Label == "" && out.Polarity == nil) {
		return nil, fmt.Errorf("%w: sentiment label and polarity missing", ErrMalformedProviderOutput)
	}

	label := out.Label
	polarity := 0.0
	if out.Polarity != nil {
		polarity = clampPolarity(*out.Polarity)
	}
	if label == "" {
		switch {
		case polarity > 0.2:
			label = "positive"
		case polarity < -0.2:
			label = "negative"
		default:
			label = "neutral"
		}
	}

	confidence := defaultSentimentConfidence
	if out.Confidence != nil {
		confidence = clampConfidence(*out.Confidence)
	}

	// Negative polarity maps to elevated stress: -1 -> 100, 0 -> 50, +1 -> 0.
	score := clampScore((1 - polarity) * 50)

	return &model.ModalityScore{
		Channel:    model.ChannelSentiment,
		Score:      score,
		Confidence: confidence,
		Detail: model.ModalityDetail{
			Sentiment: &model.SentimentDetail{
				Label:      label,
				Polarity:   polarity,
				KeyPhrases: out.KeyPhrases,
			},
		},
		ComputedAt: now,
	}, nil
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampPolarity(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

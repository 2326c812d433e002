package scoring

import (
	"hash/fnv"
	"time"

	"mstress/internal/dass"
	"mstress/internal/model"
)

// FallbackConfidenceCeiling caps the confidence of any synthesized score so
// fallback contributions can never dominate a composite's reported confidence.
const FallbackConfidenceCeiling = 0.60

// localScoringConfidence is used when the questionnaire is scored locally
// from the fixed DASS-21 table instead of by the provider. The arithmetic is
// exact, but the provider was bypassed, so the record is still flagged.
const localScoringConfidence = 0.80

// FallbackContext carries whatever partial signals survived the provider
// failure, so synthesis can stay deterministic instead of random.
type FallbackContext struct {
	// AssessmentID seeds the deterministic band position for channels with
	// no local computation. The same assessment always synthesizes the same score.
	AssessmentID string
	// Responses enables local questionnaire scoring even when the provider is down.
	Responses map[string]int
	// LevelHint optionally biases non-computable channels toward a band
	// consistent with the channels that did succeed.
	LevelHint model.StressLevel
}

// Synthesize produces a bounded, clearly-marked substitute ModalityScore for a
// channel whose provider call failed or produced unusable output. It is pure:
// no I/O, no randomness, idempotent for the same inputs.
func Synthesize(channel model.Channel, fc FallbackContext, now time.Time) model.ModalityScore {
	if channel == model.ChannelQuestionnaire {
		if ms, ok := synthesizeQuestionnaire(fc, now); ok {
			return ms
		}
	}
	return synthesizeNeutral(channel, fc, now)
}

// synthesizeQuestionnaire runs the local DASS-21 table. The questionnaire is
// the one channel whose scoring logic can always run locally.
func synthesizeQuestionnaire(fc FallbackContext, now time.Time) (model.ModalityScore, bool) {
	result, err := dass.Score(fc.Responses)
	if err != nil {
		return model.ModalityScore{}, false
	}

	return model.ModalityScore{
		Channel:    model.ChannelQuestionnaire,
		Score:      result.Score100,
		Confidence: localScoringConfidence,
		Detail: model.ModalityDetail{
			Questionnaire: &model.QuestionnaireDetail{
				DepressionScore:    result.Depression.Score,
				AnxietyScore:       result.Anxiety.Score,
				StressScore:        result.Stress.Score,
				DepressionSeverity: result.Depression.Severity,
				AnxietySeverity:    result.Anxiety.Severity,
				StressSeverity:     result.Stress.Severity,
				CategoryScores:     result.CategoryScores(),
			},
		},
		IsFallback: true,
		ComputedAt: now,
	}, true
}

// synthesizeNeutral produces a plausible-band placeholder for channels with no
// local computation. The band follows the level hint when present, otherwise a
// neutral default; the position within the band is a stable hash of the
// assessment id plus channel.
func synthesizeNeutral(channel model.Channel, fc FallbackContext, now time.Time) model.ModalityScore {
	lo, hi := fallbackBand(fc.LevelHint)
	span := hi - lo
	offset := float64(stableHash(fc.AssessmentID+":"+string(channel))%1000) / 1000.0

	score := lo + span*offset

	detail := model.ModalityDetail{}
	switch channel {
	case model.ChannelFacial:
		detail.Facial = &model.FacialDetail{DominantEmotion: defaultEmotion}
	case model.ChannelVoice:
		detail.Voice = &model.VoiceDetail{Arousal: 0.5, Tension: score / 200, EnergyLevel: 0.5}
	case model.ChannelSentiment:
		detail.Sentiment = &model.SentimentDetail{Label: "neutral", Polarity: 0}
	}

	return model.ModalityScore{
		Channel:    channel,
		Score:      score,
		Confidence: FallbackConfidenceCeiling,
		Detail:     detail,
		IsFallback: true,
		ComputedAt: now,
	}
}

// fallbackBand returns the documented plausible score band for a stress-level
// hint. With no hint, the neutral default straddles the moderate range.
func fallbackBand(hint model.StressLevel) (lo, hi float64) {
	switch hint {
	case model.StressLow:
		return 10, 25
	case model.StressModerate:
		return 30, 45
	case model.StressHigh:
		return 55, 70
	case model.StressSevere:
		return 75, 90
	default:
		return 35, 50
	}
}

func stableHash(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

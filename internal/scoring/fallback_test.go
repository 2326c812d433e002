package scoring

import (
	"testing"
	"time"

	"mstress/internal/model"
)

func TestSynthesizeDeterministic(t *testing.T) {
	now := time.Now()
	fc := FallbackContext{AssessmentID: "a-1"}

	first := Synthesize(model.ChannelFacial, fc, now)
	second := Synthesize(model.ChannelFacial, fc, now)

	if first.Score != second.Score {
		t.Errorf("scores differ across calls: %v vs %v", first.Score, second.Score)
	}
	if !first.IsFallback {
		t.Error("synthesized score must be flagged as fallback")
	}
	if first.Confidence != FallbackConfidenceCeiling {
		t.Errorf("confidence = %v, want ceiling %v", first.Confidence, FallbackConfidenceCeiling)
	}
}

func TestSynthesizeVariesByChannel(t *testing.T) {
	now := time.Now()
	fc := FallbackContext{AssessmentID: "a-1"}

	facial := Synthesize(model.ChannelFacial, fc, now)
	voice := Synthesize(model.ChannelVoice, fc, now)

	if facial.Score == voice.Score {
		t.Errorf("expected different scores per channel, both %v", facial.Score)
	}
}

func TestSynthesizeBandFollowsHint(t *testing.T) {
	now := time.Now()
	tests := []struct {
		hint   model.StressLevel
		lo, hi float64
	}{
		{model.StressLow, 10, 25},
		{model.StressModerate, 30, 45},
		{model.StressHigh, 55, 70},
		{model.StressSevere, 75, 90},
		{"", 35, 50},
	}

	for _, tt := range tests {
		fc := FallbackContext{AssessmentID: "a-2", LevelHint: tt.hint}
		ms := Synthesize(model.ChannelVoice, fc, now)
		if ms.Score < tt.lo || ms.Score > tt.hi {
			t.Errorf("hint %q: score %v outside [%v,%v]", tt.hint, ms.Score, tt.lo, tt.hi)
		}
	}
}

func TestSynthesizeQuestionnaireLocalScoring(t *testing.T) {
	now := time.Now()
	fc := FallbackContext{
		AssessmentID: "a-3",
		Responses:    fullResponses(3),
	}

	ms := Synthesize(model.ChannelQuestionnaire, fc, now)
	if !ms.IsFallback {
		t.Error("locally scored questionnaire must still be flagged as fallback")
	}
	if ms.Confidence != 0.80 {
		t.Errorf("confidence = %v, want local-scoring 0.80", ms.Confidence)
	}
	if ms.Detail.Questionnaire == nil {
		t.Fatal("expected questionnaire detail from the local table")
	}
	// All-max answers land near the top of the scale.
	if ms.Score < 90 {
		t.Errorf("score = %v, want near max", ms.Score)
	}
}

func TestSynthesizeQuestionnaireWithoutResponses(t *testing.T) {
	now := time.Now()
	fc := FallbackContext{AssessmentID: "a-4"}

	ms := Synthesize(model.ChannelQuestionnaire, fc, now)
	if ms.Confidence != FallbackConfidenceCeiling {
		t.Errorf("confidence = %v, want ceiling when no responses survive", ms.Confidence)
	}
	if ms.Score < 35 || ms.Score > 50 {
		t.Errorf("score = %v, want neutral band", ms.Score)
	}
}

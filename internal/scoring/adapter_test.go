package scoring

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"mstress/internal/model"
)

func floatPtr(v float64) *float64 { return &v }

func fullResponses(v int) map[string]int {
	r := make(map[string]int, 20)
	for i := 1; i <= 20; i++ {
		r[fmt.Sprintf("q%d", i)] = v
	}
	return r
}

func TestNormalizeNilPayload(t *testing.T) {
	_, err := Normalize(model.ChannelFacial, nil, time.Now())
	if !errors.Is(err, ErrMalformedProviderOutput) {
		t.Fatalf("err = %v, want ErrMalformedProviderOutput", err)
	}
}

func TestNormalizeQuestionnaire(t *testing.T) {
	now := time.Now()
	raw := &model.ProviderOutput{
		Questionnaire: &model.QuestionnaireProviderOutput{
			Responses: fullResponses(2),
		},
	}

	ms, err := Normalize(model.ChannelQuestionnaire, raw, now)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if ms.Channel != model.ChannelQuestionnaire {
		t.Errorf("channel = %s", ms.Channel)
	}
	if ms.IsFallback {
		t.Error("provider-backed score must not be flagged as fallback")
	}
	if ms.Confidence != 0.95 {
		t.Errorf("confidence = %v, want default 0.95", ms.Confidence)
	}
	if ms.Detail.Questionnaire == nil {
		t.Fatal("questionnaire detail missing")
	}
	// Uniform 2s double to 28 per depression/anxiety and 24 for stress.
	if ms.Detail.Questionnaire.DepressionScore != 28 {
		t.Errorf("depression = %d, want 28", ms.Detail.Questionnaire.DepressionScore)
	}
	if len(ms.Detail.Questionnaire.CategoryScores) != 3 {
		t.Errorf("categories = %v", ms.Detail.Questionnaire.CategoryScores)
	}
}

func TestNormalizeQuestionnaireProviderOverride(t *testing.T) {
	raw := &model.ProviderOutput{
		Questionnaire: &model.QuestionnaireProviderOutput{
			Responses:  fullResponses(1),
			TotalScore: floatPtr(42.5),
			Confidence: floatPtr(0.9),
		},
	}

	ms, err := Normalize(model.ChannelQuestionnaire, raw, time.Now())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if ms.Score != 42.5 {
		t.Errorf("score = %v, want provider total 42.5", ms.Score)
	}
	if ms.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", ms.Confidence)
	}
}

func TestNormalizeQuestionnaireBadResponses(t *testing.T) {
	raw := &model.ProviderOutput{
		Questionnaire: &model.QuestionnaireProviderOutput{
			Responses: map[string]int{"q1": 5},
		},
	}
	_, err := Normalize(model.ChannelQuestionnaire, raw, time.Now())
	if !errors.Is(err, ErrMalformedProviderOutput) {
		t.Fatalf("err = %v, want ErrMalformedProviderOutput", err)
	}
}

func TestNormalizeFacial(t *testing.T) {
	raw := &model.ProviderOutput{
		Facial: &model.FacialProviderOutput{
			StressScore:     floatPtr(130),
			DominantEmotion: "",
			FramesAnalyzed:  12,
		},
	}

	ms, err := Normalize(model.ChannelFacial, raw, time.Now())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if ms.Score != 100 {
		t.Errorf("score = %v, want clamped 100", ms.Score)
	}
	if ms.Confidence != 0.70 {
		t.Errorf("confidence = %v, want default 0.70", ms.Confidence)
	}
	if ms.Detail.Facial.DominantEmotion != "neutral" {
		t.Errorf("emotion = %q, want neutral default", ms.Detail.Facial.DominantEmotion)
	}
}

func TestNormalizeFacialMissingScore(t *testing.T) {
	raw := &model.ProviderOutput{Facial: &model.FacialProviderOutput{DominantEmotion: "happy"}}
	_, err := Normalize(model.ChannelFacial, raw, time.Now())
	if !errors.Is(err, ErrMalformedProviderOutput) {
		t.Fatalf("err = %v, want ErrMalformedProviderOutput", err)
	}
}

func TestNormalizeVoice(t *testing.T) {
	raw := &model.ProviderOutput{
		Voice: &model.VoiceProviderOutput{
			StressScore: floatPtr(61),
			Arousal:     floatPtr(0.8),
			Tension:     floatPtr(0.7),
		},
	}

	ms, err := Normalize(model.ChannelVoice, raw, time.Now())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if ms.Score != 61 {
		t.Errorf("score = %v", ms.Score)
	}
	if ms.Confidence != 0.65 {
		t.Errorf("confidence = %v, want default 0.65", ms.Confidence)
	}
	if ms.Detail.Voice.Arousal != 0.8 {
		t.Errorf("arousal = %v", ms.Detail.Voice.Arousal)
	}
}

func TestNormalizeSentiment(t *testing.T) {
	tests := []struct {
		name      string
		out       model.SentimentProviderOutput
		wantScore float64
		wantLabel string
	}{
		{"negative polarity", model.SentimentProviderOutput{Polarity: floatPtr(-1)}, 100, "negative"},
		{"neutral polarity", model.SentimentProviderOutput{Polarity: floatPtr(0)}, 50, "neutral"},
		{"positive polarity", model.SentimentProviderOutput{Polarity: floatPtr(1)}, 0, "positive"},
		{"label only", model.SentimentProviderOutput{Label: "negative"}, 50, "negative"},
		{"clamped polarity", model.SentimentProviderOutput{Polarity: floatPtr(-3)}, 100, "negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := &model.ProviderOutput{Sentiment: &tt.out}
			ms, err := Normalize(model.ChannelSentiment, raw, time.Now())
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if ms.Score != tt.wantScore {
				t.Errorf("score = %v, want %v", ms.Score, tt.wantScore)
			}
			if ms.Detail.Sentiment.Label != tt.wantLabel {
				t.Errorf("label = %q, want %q", ms.Detail.Sentiment.Label, tt.wantLabel)
			}
		})
	}
}

func TestNormalizeSentimentEmpty(t *testing.T) {
	raw := &model.ProviderOutput{Sentiment: &model.SentimentProviderOutput{}}
	_, err := Normalize(model.ChannelSentiment, raw, time.Now())
	if !errors.Is(err, ErrMalformedProviderOutput) {
		t.Fatalf("err = %v, want ErrMalformedProviderOutput", err)
	}
}

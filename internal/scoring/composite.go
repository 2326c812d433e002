package scoring

import (
	"fmt"
	"sort"

	"mstress/internal/model"
)

// Base channel weights. The questionnaire is the most validated signal and
// carries half the weight; the remaining channels share the rest equally.
const (
	questionnaireWeight = 0.5
	otherChannelWeight  = 0.5 / 3.0
)

// fallbackPenalty multiplies the composite confidence once per fallback
// channel, compounding, with a floor to avoid a degenerate zero.
const (
	fallbackPenalty = 0.85
	confidenceFloor = 0.10
)

// Category thresholds driving insight derivation.
const (
	riskFactorThreshold = 75.0
	concernThreshold    = 60.0
	strengthThreshold   = 30.0
)

// Combine aggregates all present modality scores into one CompositeResult.
// It requires at least one score and fails with ErrNoModalityData otherwise.
func Combine(scores []model.ModalityScore) (*model.CompositeResult, error) {
	if len(scores) == 0 {
		return nil, ErrNoModalityData
	}

	// Effective weight per channel = base weight x that channel's confidence,
	// renormalized to sum to 1 over only the channels actually present.
	weights := make([]float64, len(scores))
	var total float64
	for i, ms := range scores {
		w := baseWeight(ms.Channel) * ms.Confidence
		weights[i] = w
		total += w
	}
	if total <= 0 {
		// All-zero confidence degenerates to a plain mean.
		for i := range weights {
			weights[i] = 1
		}
		total = float64(len(weights))
	}

	var overall, confidence float64
	fallbacks := 0
	for i, ms := range scores {
		w := weights[i] / total
		overall += w * ms.Score
		confidence += w * ms.Confidence
		if ms.IsFallback {
			fallbacks++
		}
	}

	for i := 0; i < fallbacks; i++ {
		confidence *= fallbackPenalty
	}
	if confidence < confidenceFloor {
		confidence = confidenceFloor
	}

	level := LevelForScore(overall)
	categories := categoryScores(scores)
	insights := deriveInsights(categories, level)
	recs := deriveRecommendations(categories, level)

	return &model.CompositeResult{
		OverallScore:    overall,
		StressLevel:     level,
		Confidence:      confidence,
		CategoryScores:  categories,
		Insights:        insights,
		Recommendations: recs,
	}, nil
}

// LevelForScore maps an overall score onto the fixed stress bands. Boundary
// values resolve to the higher band: the safety bias rounds toward severity.
func LevelForScore(score float64) model.StressLevel {
	switch {
	case score >= 75:
		return model.StressSevere
	case score >= 50:
		return model.StressHigh
	case score >= 25:
		return model.StressModerate
	default:
		return model.StressLow
	}
}

func baseWeight(c model.Channel) float64 {
	if c == model.ChannelQuestionnaire {
		return questionnaireWeight
	}
	return otherChannelWeight
}

// categoryScores come only from the questionnaire channel's detail; absence
// yields an empty mapping, not an error.
func categoryScores(scores []model.ModalityScore) map[string]float64 {
	for _, ms := range scores {
		if ms.Channel == model.ChannelQuestionnaire && ms.Detail.Questionnaire != nil {
			out := make(map[string]float64, len(ms.Detail.Questionnaire.CategoryScores))
			for k, v := range ms.Detail.Questionnaire.CategoryScores {
				out[k] = v
			}
			return out
		}
	}
	return map[string]float64{}
}

func deriveInsights(categories map[string]float64, level model.StressLevel) model.Insights {
	ins := model.Insights{
		Strengths:   []string{},
		Concerns:    []string{},
		RiskFactors: []string{},
	}

	for _, name := range sortedKeys(categories) {
		score := categories[name]
		switch {
		case score >= riskFactorThreshold:
			ins.RiskFactors = append(ins.RiskFactors, fmt.Sprintf("%s symptoms in the clinical range", name))
		case score >= concernThreshold:
			ins.Concerns = append(ins.Concerns, fmt.Sprintf("elevated %s indicators", name))
		case score <= strengthThreshold:
			ins.Strengths = append(ins.Strengths, fmt.Sprintf("%s within the healthy range", name))
		}
	}

	if level == model.StressSevere {
		ins.RiskFactors = append(ins.RiskFactors, "overall stress in the severe band")
	}
	return ins
}

func deriveRecommendations(categories map[string]float64, level model.StressLevel) []model.Recommendation {
	var recs []model.Recommendation

	// High and severe composites always carry at least one high-priority
	// recommendation urging professional contact.
	switch level {
	case model.StressSevere:
		recs = append(recs, model.Recommendation{
			Priority: model.PriorityUrgent,
			Text:     "Contact a mental health professional as soon as possible.",
		})
	case model.StressHigh:
		recs = append(recs, model.Recommendation{
			Priority: model.PriorityUrgent,
			Text:     "Schedule a consultation with a mental health professional.",
		})
	}

	for _, name := range sortedKeys(categories) {
		score := categories[name]
		if score < concernThreshold {
			continue
		}
		priority := model.PriorityModerate
		if score >= riskFactorThreshold {
			priority = model.PriorityHigh
		}
		switch name {
		case "depression":
			recs = append(recs, model.Recommendation{Priority: priority,
				Text: "Maintain daily routines and social contact; consider structured behavioral activation."})
		case "anxiety":
			recs = append(recs, model.Recommendation{Priority: priority,
				Text: "Practice paced breathing and grounding exercises when symptoms spike."})
		case "stress":
			recs = append(recs, model.Recommendation{Priority: priority,
				Text: "Reduce workload where possible and protect sleep and recovery time."})
		}
	}

	if len(recs) == 0 {
		recs = append(recs, model.Recommendation{
			Priority: model.PriorityLow,
			Text:     "Keep up current habits and re-assess periodically.",
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return priorityRank(recs[i].Priority) < priorityRank(recs[j].Priority)
	})
	return recs
}

func priorityRank(p model.RecommendationPriority) int {
	switch p {
	case model.PriorityUrgent:
		return 0
	case model.PriorityHigh:
		return 1
	case model.PriorityModerate:
		return 2
	default:
		return 3
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

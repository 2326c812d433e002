// Package dass implements the DASS-21 questionnaire scoring scheme used by
// the questionnaire channel. Scoring is a fixed table and always computable
// locally, so it needs no provider call.
package dass

import "fmt"

// QuestionCount is the number of items in the questionnaire form.
const QuestionCount = 20

// MaxResponse is the highest value a single answer may take (0-3 scale:
// 0 = did not apply, 1 = applied sometimes, 2 = applied often, 3 = applied very much).
const MaxResponse = 3

// maxSubscale is the maximum attainable subscale score after the DASS x2 multiplier.
const maxSubscale = 42.0

// Subscale names.
const (
	SubscaleDepression = "depression"
	SubscaleAnxiety    = "anxiety"
	SubscaleStress     = "stress"
)

// subscaleByIndex maps question index (0-based) to its subscale.
// Questions cycle depression, anxiety, stress across the 20 items.
var subscaleByIndex = [QuestionCount]string{
	SubscaleDepression, SubscaleAnxiety, SubscaleStress,
	SubscaleDepression, SubscaleAnxiety, SubscaleStress,
	SubscaleDepression, SubscaleAnxiety, SubscaleStress,
	SubscaleDepression, SubscaleAnxiety, SubscaleStress,
	SubscaleDepression, SubscaleAnxiety, SubscaleStress,
	SubscaleDepression, SubscaleAnxiety, SubscaleStress,
	SubscaleDepression, SubscaleAnxiety,
}

// severityBand is one inclusive score range for a severity label.
type severityBand struct {
	min, max int
	label    string
}

// severityBands holds the standard DASS-21 severity thresholds per subscale.
var severityBands = map[string][]severityBand{
	SubscaleDepression: {
		{0, 9, "normal"}, {10, 13, "mild"}, {14, 20, "moderate"},
		{21, 27, "severe"}, {28, 42, "extremely_severe"},
	},
	SubscaleAnxiety: {
		{0, 7, "normal"}, {8, 9, "mild"}, {10, 14, "moderate"},
		{15, 19, "severe"}, {20, 42, "extremely_severe"},
	},
	SubscaleStress: {
		{0, 14, "normal"}, {15, 18, "mild"}, {19, 25, "moderate"},
		{26, 33, "severe"}, {34, 42, "extremely_severe"},
	},
}

// SubscaleResult is one scored subscale.
type SubscaleResult struct {
	Score      int     `json:"score"`
	Severity   string  `json:"severity"`
	Percentage float64 `json:"percentage"` // score relative to the 0-42 range
}

// Result is a fully scored questionnaire.
type Result struct {
	Depression SubscaleResult `json:"depression"`
	Anxiety    SubscaleResult `json:"anxiety"`
	Stress     SubscaleResult `json:"stress"`

	// OverallScore is the mean of the three subscale scores on the 0-42 scale.
	OverallScore float64 `json:"overallScore"`
	// Score100 is the overall score normalized to 0-100.
	Score100 float64 `json:"score100"`
}

// Score computes the DASS-21 result from answers keyed "q1".."q20".
// Every question must be present with a value in [0,3].
func Score(responses map[string]int) (*Result, error) {
	if len(responses) != QuestionCount {
		return nil, fmt.Errorf("expected %d responses, got %d", QuestionCount, len(responses))
	}

	sums := map[string]int{}
	for i := 0; i < QuestionCount; i++ {
		key := fmt.Sprintf("q%d", i+1)
		v, ok := responses[key]
		if !ok {
			return nil, fmt.Errorf("missing response %s", key)
		}
		if v < 0 || v > MaxResponse {
			return nil, fmt.Errorf("response %s must be between 0-%d, got %d", key, MaxResponse, v)
		}
		sums[subscaleByIndex[i]] += v
	}

	// DASS-21 doubles raw subscale sums to align with the full-scale norms.
	dep := subscaleResult(SubscaleDepression, sums[SubscaleDepression]*2)
	anx := subscaleResult(SubscaleAnxiety, sums[SubscaleAnxiety]*2)
	str := subscaleResult(SubscaleStress, sums[SubscaleStress]*2)

	overall := (float64(dep.Score) + float64(anx.Score) + float64(str.Score)) / 3.0

	return &Result{
		Depression:   dep,
		Anxiety:      anx,
		Stress:       str,
		OverallScore: overall,
		Score100:     clampPct(overall / maxSubscale * 100),
	}, nil
}

// CategoryScores maps each subscale to its 0-100 percentage, for use as the
// composite's life-domain category breakdown.
func (r *Result) CategoryScores() map[string]float64 {
	return map[string]float64{
		SubscaleDepression: r.Depression.Percentage,
		SubscaleAnxiety:    r.Anxiety.Percentage,
		SubscaleStress:     r.Stress.Percentage,
	}
}

// QuestionKeys returns the canonical ordered response keys q1..q20.
func QuestionKeys() []string {
	keys := make([]string, QuestionCount)
	for i := range keys {
		keys[i] = fmt.Sprintf("q%d", i+1)
	}
	return keys
}

func subscaleResult(name string, score int) SubscaleResult {
	return SubscaleResult{
		Score:      score,
		Severity:   severityFor(name, score),
		Percentage: clampPct(float64(score) / maxSubscale * 100),
	}
}

func severityFor(subscale string, score int) string {
	for _, band := range severityBands[subscale] {
		if score >= band.min && score <= band.max {
			return band.label
		}
	}
	return "extremely_severe"
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

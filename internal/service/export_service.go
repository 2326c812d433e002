package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"mstress/internal/cache"
	"mstress/internal/model"
	"mstress/internal/repository"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
	exportFetchLimit    = 1000
)

// ExportService serves per-user assessment history, file exports and the
// cached summary rollup.
type ExportService struct {
	assessmentRepo repository.AssessmentRepo
	summaryCache   cache.SummaryCache
}

// NewExportService creates a new export service
func NewExportService(assessmentRepo repository.AssessmentRepo, summaryCache cache.SummaryCache) *ExportService {
	return &ExportService{
		assessmentRepo: assessmentRepo,
		summaryCache:   summaryCache,
	}
}

func (s *ExportService) authorize(actor Actor, userID string) error {
	if actor.UserID != userID && !actor.Role.CanReview() {
		return ErrForbidden
	}
	return nil
}

// History returns a user's assessments newest first.
func (s *ExportService) History(ctx context.Context, actor Actor, userID string, limit, offset int) ([]*model.Assessment, error) {
	if err := s.authorize(actor, userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.assessmentRepo.GetByUserID(ctx, userID, limit, offset)
}

// Export renders a user's completed assessments as csv or json and returns
// the payload with its content type.
func (s *ExportService) Export(ctx context.Context, actor Actor, userID, format string) ([]byte, string, error) {
	if err := s.authorize(actor, userID); err != nil {
		return nil, "", err
	}

	assessments, err := s.assessmentRepo.GetByUserID(ctx, userID, exportFetchLimit, 0)
	if err != nil {
		return nil, "", err
	}
	completed := make([]*model.Assessment, 0, len(assessments))
	for _, a := range assessments {
		if a.Status == model.AssessmentCompleted && a.Composite != nil {
			completed = append(completed, a)
		}
	}

	switch strings.ToLower(format) {
	case "", "json":
		data, err := json.MarshalIndent(completed, "", "  ")
		if err != nil {
			return nil, "", err
		}
		return data, "application/json", nil
	case "csv":
		data, err := renderCSV(completed)
		if err != nil {
			return nil, "", err
		}
		return data, "text/csv", nil
	default:
		return nil, "", fmt.Errorf("unsupported export format %q", format)
	}
}

func renderCSV(assessments []*model.Assessment) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"assessmentId", "type", "completedAt", "overallScore",
		"stressLevel", "confidence", "channels", "fallbackChannels",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, a := range assessments {
		completedAt := ""
		if a.CompletedAt != nil {
			completedAt = a.CompletedAt.UTC().Format(time.RFC3339)
		}
		channels := make([]string, 0, len(a.ModalityScores))
		for _, ms := range a.ModalityScores {
			channels = append(channels, string(ms.Channel))
		}
		row := []string{
			a.ID,
			string(a.Type),
			completedAt,
			strconv.FormatFloat(a.Composite.OverallScore, 'f', 2, 64),
			string(a.Composite.StressLevel),
			strconv.FormatFloat(a.Composite.Confidence, 'f', 2, 64),
			strings.Join(channels, "|"),
			strings.Join(a.Metadata.FallbackChannels, "|"),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Summary returns the user's assessment rollup, serving from cache when warm
// and recomputing from the store otherwise.
func (s *ExportService) Summary(ctx context.Context, actor Actor, userID string) (*model.AssessmentSummary, error) {
	if err := s.authorize(actor, userID); err != nil {
		return nil, err
	}

	if s.summaryCache != nil {
		cached, err := s.summaryCache.Get(ctx, userID)
		if err != nil {
			log.Printf("summary cache read failed for user %s: %v", userID, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	assessments, err := s.assessmentRepo.GetByUserID(ctx, userID, exportFetchLimit, 0)
	if err != nil {
		return nil, err
	}
	summary := buildSummary(userID, assessments)

	if s.summaryCache != nil {
		if err := s.summaryCache.Set(ctx, summary); err != nil {
			log.Printf("summary cache write failed for user %s: %v", userID, err)
		}
	}
	return summary, nil
}

func buildSummary(userID string, assessments []*model.Assessment) *model.AssessmentSummary {
	summary := &model.AssessmentSummary{
		UserID:            userID,
		LevelDistribution: make(map[model.StressLevel]int),
	}

	var total float64
	var latest *model.Assessment
	for _, a := range assessments {
		if a.Status != model.AssessmentCompleted || a.Composite == nil || a.CompletedAt == nil {
			continue
		}
		summary.TotalCompleted++
		total += a.Composite.OverallScore
		summary.LevelDistribution[a.Composite.StressLevel]++
		if latest == nil || a.CompletedAt.After(*latest.CompletedAt) {
			latest = a
		}
	}

	if summary.TotalCompleted > 0 {
		summary.AverageScore = total / float64(summary.TotalCompleted)
	}
	if latest != nil {
		summary.LatestScore = latest.Composite.OverallScore
		summary.LatestLevel = latest.Composite.StressLevel
		summary.LatestAt = latest.CompletedAt
	}
	return summary
}

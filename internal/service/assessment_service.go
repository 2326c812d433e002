package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"mstress/internal/cache"
	"mstress/internal/config"
	"mstress/internal/model"
	"mstress/internal/repository"
	"mstress/internal/scoring"
)

// Actor is the authenticated caller, resolved by middleware.
type Actor struct {
	UserID string
	Role   model.Role
}

// AssessmentService runs the submission pipeline: per-channel analysis with
// independent timeouts, fallback synthesis, composite scoring and atomic
// finalize, then triage enqueue for reviewable results.
type AssessmentService struct {
	assessmentRepo repository.AssessmentRepo
	userRepo       repository.UserRepo
	triageCache    cache.TriageCache
	summaryCache   cache.SummaryCache
	provider       ModalityProvider
	broadcaster    Broadcaster
	channelTimeout time.Duration
}

// NewAssessmentService creates a new assessment service
func NewAssessmentService(
	assessmentRepo repository.AssessmentRepo,
	userRepo repository.UserRepo,
	triageCache cache.TriageCache,
	summaryCache cache.SummaryCache,
	provider ModalityProvider,
	cfg *config.ProviderConfig,
) *AssessmentService {
	return &AssessmentService{
		assessmentRepo: assessmentRepo,
		userRepo:       userRepo,
		triageCache:    triageCache,
		summaryCache:   summaryCache,
		provider:       provider,
		channelTimeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
	}
}

// SetBroadcaster sets the broadcaster for reviewer notifications
func (s *AssessmentService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// channelResult pairs one normalized score with its provider version tag.
type channelResult struct {
	score   model.ModalityScore
	version string
}

// Submit runs one canonical assessment submission end to end and returns the
// completed record. Provider failures never fail the submission: each failed
// channel is independently replaced by a synthesized fallback.
func (s *AssessmentService) Submit(ctx context.Context, userID string, req *model.SubmitAssessmentRequest) (*model.Assessment, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.Active {
		return nil, ErrUserInactive
	}

	channels := requestedChannels(req)
	if len(channels) == 0 {
		return nil, scoring.ErrNoModalityData
	}

	assessment := &model.Assessment{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      assessmentType(req, channels),
		Status:    model.AssessmentInProgress,
		CreatedAt: time.Now(),
	}
	if err := s.assessmentRepo.Create(ctx, assessment); err != nil {
		return nil, err
	}

	scores, versions := s.analyzeChannels(ctx, assessment.ID, channels, req)

	composite, err := scoring.Combine(scores)
	if err != nil {
		return nil, err
	}

	meta := model.AssessmentMetadata{
		DurationSec:      req.DurationSec,
		ProviderVersions: versions,
		ChannelCount:     len(scores),
		FallbackChannels: fallbackChannels(scores),
	}

	return s.finalize(ctx, assessment.ID, userID, scores, composite, meta)
}

// analyzeChannels dispatches every requested channel concurrently, each with
// its own timeout. A slow or failed channel never blocks the others; its
// result is a deterministic fallback.
func (s *AssessmentService) analyzeChannels(ctx context.Context, assessmentID string, channels []model.Channel, req *model.SubmitAssessmentRequest) ([]model.ModalityScore, map[string]string) {
	results := make(map[model.Channel]channelResult, len(channels))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, channel := range channels {
		wg.Add(1)
		go func(ch model.Channel) {
			defer wg.Done()
			res := s.analyzeChannel(ctx, assessmentID, ch, req)
			mu.Lock()
			results[ch] = res
			mu.Unlock()
		}(channel)
	}
	wg.Wait()

	rebiasFallbacks(assessmentID, req, results)

	// Canonical channel order keeps the stored set stable.
	scores := make([]model.ModalityScore, 0, len(results))
	versions := make(map[string]string)
	for _, ch := range model.AllChannels {
		res, ok := results[ch]
		if !ok {
			continue
		}
		scores = append(scores, res.score)
		if res.version != "" {
			versions[string(ch)] = res.version
		}
	}
	return scores, versions
}

// rebiasFallbacks re-synthesizes neutrally-banded fallback scores once the
// successful channels are known, so substitutes land in a band consistent
// with the real signal instead of the neutral default. Locally scored
// questionnaire fallbacks carry real arithmetic and are left alone.
func rebiasFallbacks(assessmentID string, req *model.SubmitAssessmentRequest, results map[model.Channel]channelResult) {
	var sum float64
	var n int
	for _, res := range results {
		if !res.score.IsFallback {
			sum += res.score.Score
			n++
		}
	}
	if n == 0 {
		return
	}
	hint := scoring.LevelForScore(sum / float64(n))

	for ch, res := range results {
		if !res.score.IsFallback || res.score.Detail.Questionnaire != nil {
			continue
		}
		fc := scoring.FallbackContext{
			AssessmentID: assessmentID,
			Responses:    req.Responses,
			LevelHint:    hint,
		}
		results[ch] = channelResult{score: scoring.Synthesize(ch, fc, res.score.ComputedAt)}
	}
}

func (s *AssessmentService) analyzeChannel(ctx context.Context, assessmentID string, channel model.Channel, req *model.SubmitAssessmentRequest) channelResult {
	chCtx, cancel := context.WithTimeout(ctx, s.channelTimeout)
	defer cancel()

	now := time.Now()
	fc := scoring.FallbackContext{
		AssessmentID: assessmentID,
		Responses:    req.Responses,
	}

	out, err := s.callProvider(chCtx, channel, req)
	if err != nil {
		log.Printf("provider call failed for channel %s (assessment %s): %v; using fallback", channel, assessmentID, err)
		return channelResult{score: scoring.Synthesize(channel, fc, now)}
	}

	score, err := scoring.Normalize(channel, out, now)
	if err != nil {
		log.Printf("provider output unusable for channel %s (assessment %s): %v; using fallback", channel, assessmentID, err)
		return channelResult{score: scoring.Synthesize(channel, fc, now)}
	}
	return channelResult{score: *score, version: out.Version}
}

func (s *AssessmentService) callProvider(ctx context.Context, channel model.Channel, req *model.SubmitAssessmentRequest) (*model.ProviderOutput, error) {
	switch channel {
	case model.ChannelQuestionnaire:
		return s.provider.ScoreQuestionnaire(ctx, req.Responses)
	case model.ChannelFacial:
		return s.provider.AnalyzeFacial(ctx, req.ImageFrame)
	case model.ChannelVoice:
		return s.provider.AnalyzeVoice(ctx, req.AudioClip)
	default:
		return s.provider.AnalyzeSentiment(ctx, req.SentimentText)
	}
}

// finalize completes the assessment exactly once. A concurrent duplicate
// finalize is treated as success and returns the already-completed record.
func (s *AssessmentService) finalize(ctx context.Context, assessmentID, userID string, scores []model.ModalityScore, composite *model.CompositeResult, meta model.AssessmentMetadata) (*model.Assessment, error) {
	completedAt := time.Now()
	completed, didFinalize, err := s.assessmentRepo.Finalize(ctx, assessmentID, scores, composite, meta, completedAt)
	if err != nil {
		return nil, err
	}
	if completed == nil {
		return nil, ErrAssessmentNotFound
	}
	if !didFinalize {
		// Lost the race; the winner already enqueued triage.
		return completed, nil
	}

	if s.summaryCache != nil {
		if err := s.summaryCache.Invalidate(ctx, userID); err != nil {
			log.Printf("summary cache invalidate failed for user %s: %v", userID, err)
		}
	}

	if ReviewableLevel(completed.Composite.StressLevel) {
		s.enqueueTriage(ctx, completed)
	}
	return completed, nil
}

func (s *AssessmentService) enqueueTriage(ctx context.Context, assessment *model.Assessment) {
	rank := assessment.Composite.StressLevel.SeverityRank()
	if err := s.triageCache.Add(ctx, assessment.ID, rank, *assessment.CompletedAt); err != nil {
		// Mongo remains the source of truth; the list falls back to it.
		log.Printf("triage enqueue failed for assessment %s: %v", assessment.ID, err)
	}
	log.Printf("assessment %s triaged for review (level=%s score=%.1f)",
		assessment.ID, assessment.Composite.StressLevel, assessment.Composite.OverallScore)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToReviewers("assessment_triaged", map[string]interface{}{
			"assessmentId": assessment.ID,
			"stressLevel":  assessment.Composite.StressLevel,
			"overallScore": assessment.Composite.OverallScore,
			"completedAt":  assessment.CompletedAt,
		})
	}
}

// GetAssessment returns one assessment, enforcing read ownership: owners see
// their own records, reviewer/admin capability sees any.
func (s *AssessmentService) GetAssessment(ctx context.Context, actor Actor, id string) (*model.Assessment, error) {
	assessment, err := s.assessmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if assessment == nil {
		return nil, ErrAssessmentNotFound
	}
	if assessment.UserID != actor.UserID && !actor.Role.CanReview() {
		return nil, ErrForbidden
	}
	return assessment, nil
}

// ReviewableLevel reports whether a stress level meets the review threshold.
func ReviewableLevel(level model.StressLevel) bool {
	return level.SeverityRank() >= model.StressModerate.SeverityRank()
}

// requestedChannels derives the channel set from which inputs are present.
func requestedChannels(req *model.SubmitAssessmentRequest) []model.Channel {
	var channels []model.Channel
	if len(req.Responses) > 0 {
		channels = append(channels, model.ChannelQuestionnaire)
	}
	if req.ImageFrame != "" {
		channels = append(channels, model.ChannelFacial)
	}
	if req.AudioClip != "" {
		channels = append(channels, model.ChannelVoice)
	}
	if req.SentimentText != "" {
		channels = append(channels, model.ChannelSentiment)
	}
	return channels
}

func assessmentType(req *model.SubmitAssessmentRequest, channels []model.Channel) model.AssessmentType {
	if req.Type != "" {
		return req.Type
	}
	switch {
	case len(channels) == 1 && channels[0] == model.ChannelQuestionnaire:
		return model.AssessmentStandard
	case len(channels) <= 2:
		return model.AssessmentComprehensive
	default:
		return model.AssessmentMultiModal
	}
}

func fallbackChannels(scores []model.ModalityScore) []string {
	var out []string
	for _, ms := range scores {
		if ms.IsFallback {
			out = append(out, string(ms.Channel))
		}
	}
	return out
}

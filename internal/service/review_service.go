package service

import (
	"context"
	"log"
	"time"

	"mstress/internal/cache"
	"mstress/internal/model"
	"mstress/internal/repository"
)

// triageLevels are the stress levels that enter the review queue.
var triageLevels = []model.StressLevel{
	model.StressModerate,
	model.StressHigh,
	model.StressSevere,
}

// ReviewService manages the review triage queue and the single review record
// each assessment can carry.
type ReviewService struct {
	reviewRepo     repository.ReviewRepo
	assessmentRepo repository.AssessmentRepo
	triageCache    cache.TriageCache
	broadcaster    Broadcaster
}

// NewReviewService creates a new review service
func NewReviewService(
	reviewRepo repository.ReviewRepo,
	assessmentRepo repository.AssessmentRepo,
	triageCache cache.TriageCache,
) *ReviewService {
	return &ReviewService{
		reviewRepo:     reviewRepo,
		assessmentRepo: assessmentRepo,
		triageCache:    triageCache,
	}
}

// SetBroadcaster sets the broadcaster for reviewer notifications
func (s *ReviewService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// ListPending returns the triage queue, most severe first and most recent
// first within a severity. The Redis queue is the fast path; when it is
// empty or unavailable the list is rebuilt from Mongo.
func (s *ReviewService) ListPending(ctx context.Context, limit, offset int) ([]*model.PendingReviewEntry, error) {
	assessments, err := s.listTriaged(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(assessments))
	for _, a := range assessments {
		ids = append(ids, a.ID)
	}
	reviews, err := s.reviewRepo.GetByAssessmentIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]*model.PendingReviewEntry, 0, len(assessments))
	for _, a := range assessments {
		entry := &model.PendingReviewEntry{Assessment: a}
		if review, ok := reviews[a.ID]; ok {
			if review.Status.Terminal() {
				// Closed reviews have left the queue; drop stragglers.
				if err := s.triageCache.Remove(ctx, a.ID); err != nil {
					log.Printf("triage dequeue failed for assessment %s: %v", a.ID, err)
				}
				continue
			}
			entry.HasReview = true
			entry.ReviewStatus = review.Status
			entry.ReviewID = review.ID
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *ReviewService) listTriaged(ctx context.Context, limit, offset int) ([]*model.Assessment, error) {
	ids, err := s.triageCache.Range(ctx, limit, offset)
	if err != nil {
		log.Printf("triage cache unavailable, listing from store: %v", err)
		return s.assessmentRepo.ListTriage(ctx, triageLevels, limit, offset)
	}
	if len(ids) == 0 {
		return s.rebuildTriage(ctx, limit, offset)
	}

	assessments, err := s.assessmentRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Keep the queue order; GetByIDs does not preserve it.
	byID := make(map[string]*model.Assessment, len(assessments))
	for _, a := range assessments {
		byID[a.ID] = a
	}
	ordered := make([]*model.Assessment, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			ordered = append(ordered, a)
		}
	}
	return ordered, nil
}

// rebuildTriage repopulates an empty queue from the store, then serves the
// requested page. An empty store result is a genuinely empty queue.
func (s *ReviewService) rebuildTriage(ctx context.Context, limit, offset int) ([]*model.Assessment, error) {
	assessments, err := s.assessmentRepo.ListTriage(ctx, triageLevels, limit, offset)
	if err != nil {
		return nil, err
	}
	for _, a := range assessments {
		if a.Composite == nil || a.CompletedAt == nil {
			continue
		}
		if err := s.triageCache.Add(ctx, a.ID, a.Composite.StressLevel.SeverityRank(), *a.CompletedAt); err != nil {
			log.Printf("triage rebuild enqueue failed for assessment %s: %v", a.ID, err)
			break
		}
	}
	return assessments, nil
}

// openStatuses are the review states a regular patch may still modify.
var openStatuses = []model.ReviewStatus{model.ReviewPending, model.ReviewReviewed}

// allStatuses additionally admits terminal states, for flag-only patches.
var allStatuses = []model.ReviewStatus{
	model.ReviewPending,
	model.ReviewReviewed,
	model.ReviewApproved,
	model.ReviewRejected,
}

// UpsertReview records a reviewer's judgment on one assessment. The first call
// creates the review; later calls update the same record. Reviews in a
// terminal state reject further changes with ErrReviewClosed, except patches
// that only set the follow-up flag, which remain valid in any state.
func (s *ReviewService) UpsertReview(ctx context.Context, actor Actor, assessmentID string, patch model.ReviewPatch) (*model.Review, error) {
	if !actor.Role.CanReview() {
		return nil, ErrForbidden
	}

	assessment, err := s.assessmentRepo.GetByID(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if assessment == nil || assessment.Status != model.AssessmentCompleted {
		return nil, ErrAssessmentNotFound
	}

	review, err := s.reviewRepo.GetOrCreate(ctx, assessmentID, actor.UserID, assessment.Composite.StressLevel.DefaultRisk())
	if err != nil {
		return nil, err
	}
	if review.Status.Terminal() && !patch.FlagOnly() {
		return nil, ErrReviewClosed
	}

	// reviewedAt marks the first transition out of pending and never moves.
	var reviewedAt *time.Time
	if review.ReviewedAt == nil && patch.Status != nil && *patch.Status != model.ReviewPending {
		now := time.Now()
		reviewedAt = &now
	}

	allowed := openStatuses
	if patch.FlagOnly() {
		allowed = allStatuses
	}
	updated, ok, err := s.reviewRepo.Patch(ctx, assessmentID, allowed, patch, actor.UserID, reviewedAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		// A concurrent reviewer closed it between the read and the patch.
		return nil, ErrReviewClosed
	}

	if updated.Status.Terminal() {
		if err := s.triageCache.Remove(ctx, assessmentID); err != nil {
			log.Printf("triage dequeue failed for assessment %s: %v", assessmentID, err)
		}
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToReviewers("review_updated", map[string]interface{}{
			"assessmentId": assessmentID,
			"reviewId":     updated.ID,
			"status":       updated.Status,
			"reviewerId":   updated.ReviewerID,
		})
	}
	return updated, nil
}

// GetReview returns the review for an assessment, or nil when none exists.
func (s *ReviewService) GetReview(ctx context.Context, assessmentID string) (*model.Review, error) {
	return s.reviewRepo.GetByAssessmentID(ctx, assessmentID)
}

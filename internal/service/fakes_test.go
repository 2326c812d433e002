package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"mstress/internal/model"
)

// In-memory doubles for the Mongo repositories and Redis caches, matching the
// concurrency and precondition semantics of the real implementations.

type fakeAssessmentRepo struct {
	mu    sync.Mutex
	items map[string]*model.Assessment
}

func newFakeAssessmentRepo() *fakeAssessmentRepo {
	return &fakeAssessmentRepo{items: map[string]*model.Assessment{}}
}

func (r *fakeAssessmentRepo) Create(ctx context.Context, a *model.Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	cp := *a
	r.items[a.ID] = &cp
	return nil
}

func (r *fakeAssessmentRepo) GetByID(ctx context.Context, id string) (*model.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAssessmentRepo) GetByIDs(ctx context.Context, ids []string) ([]*model.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Assessment
	for _, id := range ids {
		if a, ok := r.items[id]; ok {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAssessmentRepo) Finalize(ctx context.Context, id string, scores []model.ModalityScore, composite *model.CompositeResult, meta model.AssessmentMetadata, completedAt time.Time) (*model.Assessment, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, false, nil
	}
	if a.Status != model.AssessmentInProgress {
		cp := *a
		return &cp, false, nil
	}
	a.Status = model.AssessmentCompleted
	a.ModalityScores = scores
	a.Composite = composite
	a.Metadata = meta
	a.CompletedAt = &completedAt
	a.TriageRank = composite.StressLevel.SeverityRank()
	cp := *a
	return &cp, true, nil
}

func (r *fakeAssessmentRepo) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*model.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Assessment
	for _, a := range r.items {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeAssessmentRepo) ListTriage(ctx context.Context, levels []model.StressLevel, limit, offset int) ([]*model.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	allowed := map[model.StressLevel]bool{}
	for _, l := range levels {
		allowed[l] = true
	}
	var out []*model.Assessment
	for _, a := range r.items {
		if a.Status == model.AssessmentCompleted && a.Composite != nil && allowed[a.Composite.StressLevel] {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TriageRank != out[j].TriageRank {
			return out[i].TriageRank > out[j].TriageRank
		}
		return out[i].CompletedAt.After(*out[j].CompletedAt)
	})
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeReviewRepo struct {
	mu     sync.Mutex
	items  map[string]*model.Review // keyed by assessmentID
	nextID int
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{items: map[string]*model.Review{}}
}

func (r *fakeReviewRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (r *fakeReviewRepo) GetByAssessmentID(ctx context.Context, assessmentID string) (*model.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rev, ok := r.items[assessmentID]
	if !ok {
		return nil, nil
	}
	cp := *rev
	return &cp, nil
}

func (r *fakeReviewRepo) GetByAssessmentIDs(ctx context.Context, assessmentIDs []string) (map[string]*model.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]*model.Review{}
	for _, id := range assessmentIDs {
		if rev, ok := r.items[id]; ok {
			cp := *rev
			out[id] = &cp
		}
	}
	return out, nil
}

func (r *fakeReviewRepo) GetOrCreate(ctx context.Context, assessmentID, reviewerID string, risk model.RiskAssessment) (*model.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rev, ok := r.items[assessmentID]; ok {
		cp := *rev
		return &cp, nil
	}
	r.nextID++
	now := time.Now()
	rev := &model.Review{
		ID:             fmt.Sprintf("rev-%d", r.nextID),
		AssessmentID:   assessmentID,
		ReviewerID:     reviewerID,
		Status:         model.ReviewPending,
		RiskAssessment: risk,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.items[assessmentID] = rev
	cp := *rev
	return &cp, nil
}

func (r *fakeReviewRepo) Patch(ctx context.Context, assessmentID string, allowedStatuses []model.ReviewStatus, patch model.ReviewPatch, reviewerID string, reviewedAt *time.Time) (*model.Review, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rev, ok := r.items[assessmentID]
	if !ok {
		return nil, false, nil
	}
	allowed := false
	for _, s := range allowedStatuses {
		if rev.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, false, nil
	}
	rev.ReviewerID = reviewerID
	rev.UpdatedAt = time.Now()
	if patch.Status != nil {
		rev.Status = *patch.Status
	}
	if patch.ReviewScore != nil {
		rev.ReviewScore = patch.ReviewScore
	}
	if patch.RiskAssessment != nil {
		rev.RiskAssessment = *patch.RiskAssessment
	}
	if patch.Comments != nil {
		rev.Comments = *patch.Comments
	}
	if patch.FlaggedForFollowUp != nil {
		rev.FlaggedForFollowUp = *patch.FlaggedForFollowUp
	}
	if patch.FollowUpNotes != nil {
		rev.FollowUpNotes = *patch.FollowUpNotes
	}
	if reviewedAt != nil && rev.ReviewedAt == nil {
		rev.ReviewedAt = reviewedAt
	}
	cp := *rev
	return &cp, true, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	items map[string]*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{items: map[string]*model.User{}}
	for _, u := range users {
		r.items[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.items[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.items {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

type triageEntry struct {
	id    string
	score float64
}

type fakeTriageCache struct {
	mu      sync.Mutex
	entries []triageEntry
	fail    bool
}

func newFakeTriageCache() *fakeTriageCache { return &fakeTriageCache{} }

var errCacheDown = errors.New("cache unavailable")

func (c *fakeTriageCache) Add(ctx context.Context, assessmentID string, severityRank int, completedAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errCacheDown
	}
	score := float64(severityRank)*float64(1<<42) + float64(completedAt.UnixMilli())
	for i, e := range c.entries {
		if e.id == assessmentID {
			c.entries[i].score = score
			return nil
		}
	}
	c.entries = append(c.entries, triageEntry{id: assessmentID, score: score})
	return nil
}

func (c *fakeTriageCache) Range(ctx context.Context, limit, offset int) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return nil, errCacheDown
	}
	sorted := append([]triageEntry(nil), c.entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].score > sorted[j].score })
	if offset >= len(sorted) {
		return nil, nil
	}
	sorted = sorted[offset:]
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	ids := make([]string, len(sorted))
	for i, e := range sorted {
		ids[i] = e.id
	}
	return ids, nil
}

func (c *fakeTriageCache) Remove(ctx context.Context, assessmentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.entries {
		if e.id == assessmentID {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (c *fakeTriageCache) Size(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(len(c.entries)), nil
}

func (c *fakeTriageCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	return nil
}

type fakeSummaryCache struct {
	mu    sync.Mutex
	items map[string]*model.AssessmentSummary
	sets  int
}

func newFakeSummaryCache() *fakeSummaryCache {
	return &fakeSummaryCache{items: map[string]*model.AssessmentSummary{}}
}

func (c *fakeSummaryCache) Get(ctx context.Context, userID string) (*model.AssessmentSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.items[userID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (c *fakeSummaryCache) Set(ctx context.Context, summary *model.AssessmentSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *summary
	c.items[summary.UserID] = &cp
	c.sets++
	return nil
}

func (c *fakeSummaryCache) Invalidate(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, userID)
	return nil
}

// fakeProvider returns canned outputs or errors per channel.
type fakeProvider struct {
	questionnaire *model.ProviderOutput
	facial        *model.ProviderOutput
	voice         *model.ProviderOutput
	sentiment     *model.ProviderOutput

	questionnaireErr error
	facialErr        error
	voiceErr         error
	sentimentErr     error
}

func (p *fakeProvider) ScoreQuestionnaire(ctx context.Context, responses map[string]int) (*model.ProviderOutput, error) {
	return p.questionnaire, p.questionnaireErr
}

func (p *fakeProvider) AnalyzeFacial(ctx context.Context, imageFrame string) (*model.ProviderOutput, error) {
	return p.facial, p.facialErr
}

func (p *fakeProvider) AnalyzeVoice(ctx context.Context, audioClip string) (*model.ProviderOutput, error) {
	return p.voice, p.voiceErr
}

func (p *fakeProvider) AnalyzeSentiment(ctx context.Context, text string) (*model.ProviderOutput, error) {
	return p.sentiment, p.sentimentErr
}

type broadcastRecord struct {
	msgType string
	payload interface{}
}

type fakeBroadcaster struct {
	mu       sync.Mutex
	messages []broadcastRecord
}

func (b *fakeBroadcaster) BroadcastToReviewers(msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, broadcastRecord{msgType: msgType, payload: payload})
}

func (b *fakeBroadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.messages)
}

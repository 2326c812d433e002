package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mstress/internal/model"
)

// AssessmentRepo handles MongoDB operations for assessments
type AssessmentRepo interface {
	Create(ctx context.Context, assessment *model.Assessment) error
	GetByID(ctx context.Context, id string) (*model.Assessment, error)
	GetByIDs(ctx context.Context, ids []string) ([]*model.Assessment, error)
	// Finalize atomically completes an in_progress assessment. The returned
	// bool is false when the record was already completed by a concurrent
	// call, in which case the existing completed record is returned instead.
	Finalize(ctx context.Context, id string, scores []model.ModalityScore, composite *model.CompositeResult, meta model.AssessmentMetadata, completedAt time.Time) (*model.Assessment, bool, error)
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*model.Assessment, error)
	// ListTriage returns completed assessments in the given stress levels,
	// most severe first, newest completion first within a level.
	ListTriage(ctx context.Context, levels []model.StressLevel, limit, offset int) ([]*model.Assessment, error)
}

type assessmentRepo struct {
	collection *mongo.Collection
}

// NewAssessmentRepo creates a new assessment repository
func NewAssessmentRepo(db *mongo.Database) AssessmentRepo {
	return &assessmentRepo{
		collection: db.Collection("assessments"),
	}
}

func (r *assessmentRepo) Create(ctx context.Context, assessment *model.Assessment) error {
	if assessment.CreatedAt.IsZero() {
		assessment.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, assessment)
	return err
}

func (r *assessmentRepo) GetByID(ctx context.Context, id string) (*model.Assessment, error) {
	var assessment model.Assessment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&assessment)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (r *assessmentRepo) GetByIDs(ctx context.Context, ids []string) ([]*model.Assessment, error) {
	if len(ids) == 0 {
		return []*model.Assessment{}, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assessments []*model.Assessment
	if err := cursor.All(ctx, &assessments); err != nil {
		return nil, err
	}
	return assessments, nil
}

func (r *assessmentRepo) Finalize(ctx context.Context, id string, scores []model.ModalityScore, composite *model.CompositeResult, meta model.AssessmentMetadata, completedAt time.Time) (*model.Assessment, bool, error) {
	// The filter matches only the pending record, so exactly one of any
	// concurrent finalize calls can flip it to completed.
	filter := bson.M{"_id": id, "status": model.AssessmentInProgress}
	update := bson.M{"$set": bson.M{
		"status":         model.AssessmentCompleted,
		"modalityScores": scores,
		"composite":      composite,
		"metadata":       meta,
		"completedAt":    completedAt,
		"triageRank":     composite.StressLevel.SeverityRank(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated model.Assessment
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return &updated, true, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, false, err
	}

	// No pending record matched: either it does not exist, or a concurrent
	// call already finalized it. Return whatever is there.
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *assessmentRepo) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*model.Assessment, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assessments []*model.Assessment
	if err := cursor.All(ctx, &assessments); err != nil {
		return nil, err
	}
	return assessments, nil
}

func (r *assessmentRepo) ListTriage(ctx context.Context, levels []model.StressLevel, limit, offset int) ([]*model.Assessment, error) {
	filter := bson.M{
		"status":               model.AssessmentCompleted,
		"composite.stressLevel": bson.M{"$in": levels},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "triageRank", Value: -1}, {Key: "completedAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assessments []*model.Assessment
	if err := cursor.All(ctx, &assessments); err != nil {
		return nil, err
	}
	return assessments, nil
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mstress/internal/model"
)

// ReviewRepo handles MongoDB operations for reviews. assessmentId carries a
// unique index, so concurrent creators converge on a single record.
type ReviewRepo interface {
	EnsureIndexes(ctx context.Context) error
	GetByAssessmentID(ctx context.Context, assessmentID string) (*model.Review, error)
	GetByAssessmentIDs(ctx context.Context, assessmentIDs []string) (map[string]*model.Review, error)
	// GetOrCreate atomically finds the review for an assessment or creates it
	// in pending state with the given default risk classification.
	GetOrCreate(ctx context.Context, assessmentID, reviewerID string, risk model.RiskAssessment) (*model.Review, error)
	// Patch applies the set fields to the review, but only while its current
	// status is one of allowedStatuses. Returns the updated review and true,
	// or nil and false when the status precondition did not hold.
	Patch(ctx context.Context, assessmentID string, allowedStatuses []model.ReviewStatus, patch model.ReviewPatch, reviewerID string, reviewedAt *time.Time) (*model.Review, bool, error)
}

type reviewRepo struct {
	collection *mongo.Collection
}

// NewReviewRepo creates a new review repository
func NewReviewRepo(db *mongo.Database) ReviewRepo {
	return &reviewRepo{
		collection: db.Collection("reviews"),
	}
}

func (r *reviewRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "assessmentId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *reviewRepo) GetByAssessmentID(ctx context.Context, assessmentID string) (*model.Review, error) {
	var review model.Review
	err := r.collection.FindOne(ctx, bson.M{"assessmentId": assessmentID}).Decode(&review)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepo) GetByAssessmentIDs(ctx context.Context, assessmentIDs []string) (map[string]*model.Review, error) {
	result := make(map[string]*model.Review, len(assessmentIDs))
	if len(assessmentIDs) == 0 {
		return result, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"assessmentId": bson.M{"$in": assessmentIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reviews []*model.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	for _, review := range reviews {
		result[review.AssessmentID] = review
	}
	return result, nil
}

func (r *reviewRepo) GetOrCreate(ctx context.Context, assessmentID, reviewerID string, risk model.RiskAssessment) (*model.Review, error) {
	now := time.Now()
	filter := bson.M{"assessmentId": assessmentID}
	update := bson.M{"$setOnInsert": bson.M{
		"_id":            uuid.New().String(),
		"assessmentId":   assessmentID,
		"reviewerId":     reviewerID,
		"status":         model.ReviewPending,
		"riskAssessment": risk,
		"createdAt":      now,
		"updatedAt":      now,
	}}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var review model.Review
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&review); err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepo) Patch(ctx context.Context, assessmentID string, allowedStatuses []model.ReviewStatus, patch model.ReviewPatch, reviewerID string, reviewedAt *time.Time) (*model.Review, bool, error) {
	set := bson.M{
		"reviewerId": reviewerID,
		"updatedAt":  time.Now(),
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.ReviewScore != nil {
		set["reviewScore"] = *patch.ReviewScore
	}
	if patch.RiskAssessment != nil {
		set["riskAssessment"] = *patch.RiskAssessment
	}
	if patch.Comments != nil {
		set["comments"] = *patch.Comments
	}
	if patch.FlaggedForFollowUp != nil {
		set["flaggedForFollowUp"] = *patch.FlaggedForFollowUp
	}
	if patch.FollowUpNotes != nil {
		set["followUpNotes"] = *patch.FollowUpNotes
	}

	// reviewedAt marks the first transition and never moves, even when two
	// reviewers race on a stale read. The pipeline form keeps an existing value.
	var update interface{} = bson.M{"$set": set}
	if reviewedAt != nil {
		fields := bson.M{}
		for k, v := range set {
			fields[k] = bson.M{"$literal": v}
		}
		fields["reviewedAt"] = bson.M{"$ifNull": bson.A{"$reviewedAt", *reviewedAt}}
		update = mongo.Pipeline{{{Key: "$set", Value: fields}}}
	}

	filter := bson.M{
		"assessmentId": assessmentID,
		"status":       bson.M{"$in": allowedStatuses},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var review model.Review
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&review)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &review, true, nil
}

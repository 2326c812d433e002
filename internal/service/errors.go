package service

import "errors"

var (
	// ErrAssessmentNotFound means no assessment exists for the given id.
	ErrAssessmentNotFound = errors.New("assessment not found")

	// ErrForbidden means the actor's capability does not cover the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrReviewClosed means the review reached a terminal state; a new
	// finding requires a new assessment, not a reopened review.
	ErrReviewClosed = errors.New("review is closed")

	// ErrUserNotFound means the identity collaborator knows no such user.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserInactive means the user exists but is deactivated.
	ErrUserInactive = errors.New("user is not active")

	// ErrProviderTimeout means a modality provider call hit its deadline.
	// Recovered internally via fallback synthesis, never surfaced to callers.
	ErrProviderTimeout = errors.New("provider timeout")

	// ErrProviderUnavailable means a modality provider call failed outright.
	// Recovered internally via fallback synthesis, never surfaced to callers.
	ErrProviderUnavailable = errors.New("provider unavailable")
)

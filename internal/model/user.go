package model

import "time"

// Role is the capability an actor holds.
type Role string

const (
	RoleOwner    Role = "owner"    // may submit and read own assessments
	RoleReviewer Role = "reviewer" // may triage and review any assessment
	RoleAdmin    Role = "admin"    // reviewer capability plus any-user reads
)

// CanReview reports whether the role grants review-queue access.
func (r Role) CanReview() bool {
	return r == RoleReviewer || r == RoleAdmin
}

// User is the identity collaborator's record, kept only as far as needed to
// resolve existence, active status and capability.
type User struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Role      Role      `json:"role" bson:"role"`
	Active    bool      `json:"active" bson:"active"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

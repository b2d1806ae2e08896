// internal/domain/models/registration.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Registration lifecycle: pending → confirmed | cancelled. Both outcomes are
// terminal; re-entry to pending is not supported.
const (
	RegistrationPending   = "pending"
	RegistrationConfirmed = "confirmed"
	RegistrationCancelled = "cancelled"
)

// Event kinds a registration can belong to.
const (
	EventKindTraining = "training"
	EventKindWebinar  = "webinar"
)

// Registration is one person's registration for a training session or
// webinar. The (kind, event_id, email) triple is unique. Registrations are
// hard-deleted: they are pure leaf records.
type Registration struct {
	ID       primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Kind     string              `bson:"kind" json:"kind"`
	EventID  primitive.ObjectID  `bson:"event_id" json:"event_id"`
	MemberID *primitive.ObjectID `bson:"member_id,omitempty" json:"member_id,omitempty"`

	FullName   string `bson:"full_name" json:"full_name"`
	FullNameCI string `bson:"full_name_ci" json:"-"`
	Email      string `bson:"email" json:"email"`

	Status string `bson:"status" json:"status"`

	// WaitlistRank orders pending registrations independent of creation
	// time. Nil means unranked; unranked entries sort after ranked ones.
	WaitlistRank *int `bson:"waitlist_rank,omitempty" json:"waitlist_rank,omitempty"`

	ConfirmedAt *time.Time `bson:"confirmed_at,omitempty" json:"confirmed_at,omitempty"`
	CancelledAt *time.Time `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

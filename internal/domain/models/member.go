// internal/domain/models/member.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership application / member statuses. An application is `pending`
// until an admin approves or rejects it; both outcomes are terminal.
const (
	MemberPending  = "pending"
	MemberApproved = "approved"
	MemberRejected = "rejected"
)

// Member is a membership application and, once approved, the member record
// itself. Case/diacritic-insensitive fields are always stored for
// search/sort.
//
// Members are soft-deleted (Archived) because payments and registrations
// reference them; archived members are excluded from default lists but stay
// fetchable by id.
type Member struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName   string             `bson:"first_name" json:"first_name"`
	FirstNameCI string             `bson:"first_name_ci" json:"-"`
	LastName    string             `bson:"last_name" json:"last_name"`
	LastNameCI  string             `bson:"last_name_ci" json:"-"`
	Email       string             `bson:"email" json:"email"`
	Phone       string             `bson:"phone,omitempty" json:"phone,omitempty"`
	City        string             `bson:"city,omitempty" json:"city,omitempty"`
	Profession  string             `bson:"profession,omitempty" json:"profession,omitempty"`
	Motivation  string             `bson:"motivation,omitempty" json:"motivation,omitempty"`
	PhotoURL    string             `bson:"photo_url,omitempty" json:"photo_url,omitempty"`

	Status     string              `bson:"status" json:"status"`
	DecidedAt  *time.Time          `bson:"decided_at,omitempty" json:"decided_at,omitempty"`
	DecidedBy  *primitive.ObjectID `bson:"decided_by,omitempty" json:"decided_by,omitempty"`
	Archived   bool                `bson:"archived" json:"archived"`
	ArchivedAt *time.Time          `bson:"archived_at,omitempty" json:"archived_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

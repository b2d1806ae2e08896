// internal/domain/models/prospect.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Recruitment pipeline stages.
const (
	ProspectNew       = "new"
	ProspectContacted = "contacted"
	ProspectInvited   = "invited"
	ProspectJoined    = "joined"
	ProspectDeclined  = "declined"
)

// Prospect is a recruitment lead. Prospects are soft-deleted (Archived) so
// the recruitment history survives.
type Prospect struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FullName   string              `bson:"full_name" json:"full_name"`
	FullNameCI string              `bson:"full_name_ci" json:"-"`
	Email      string              `bson:"email" json:"email"`
	Source     string              `bson:"source,omitempty" json:"source,omitempty"`
	Notes      string              `bson:"notes,omitempty" json:"notes,omitempty"`
	ReferrerID *primitive.ObjectID `bson:"referrer_id,omitempty" json:"referrer_id,omitempty"`

	Stage     string     `bson:"stage" json:"stage"`
	InvitedAt *time.Time `bson:"invited_at,omitempty" json:"invited_at,omitempty"`

	Archived   bool       `bson:"archived" json:"archived"`
	ArchivedAt *time.Time `bson:"archived_at,omitempty" json:"archived_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

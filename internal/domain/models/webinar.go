// internal/domain/models/webinar.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Webinar statuses mirror training statuses; cancelling is the soft delete.
const (
	WebinarScheduled = "scheduled"
	WebinarCancelled = "cancelled"
	WebinarCompleted = "completed"
)

// Webinar is an online session with an optional attendee cap (0 means
// unlimited).
type Webinar struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"-"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Speaker     string             `bson:"speaker,omitempty" json:"speaker,omitempty"`
	JoinURL     string             `bson:"join_url,omitempty" json:"join_url,omitempty"`
	ScheduledAt time.Time          `bson:"scheduled_at" json:"scheduled_at"`
	Capacity    int                `bson:"capacity" json:"capacity"`
	Status      string             `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

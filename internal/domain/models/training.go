// internal/domain/models/training.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Training session statuses. Cancelling is the soft delete for sessions:
// cancelled sessions drop out of default lists but keep their registration
// history.
const (
	TrainingScheduled = "scheduled"
	TrainingCancelled = "cancelled"
	TrainingCompleted = "completed"
)

// Training is a scheduled training session members can register for.
// Capacity bounds the number of confirmed registrations; pending ones queue
// on the waiting list.
type Training struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"-"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	Trainer     string             `bson:"trainer,omitempty" json:"trainer,omitempty"`
	StartsAt    time.Time          `bson:"starts_at" json:"starts_at"`
	EndsAt      *time.Time         `bson:"ends_at,omitempty" json:"ends_at,omitempty"`
	Capacity    int                `bson:"capacity" json:"capacity"`
	Status      string             `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

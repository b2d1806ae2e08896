// internal/app/store/trainings/trainingstore.go
package trainingstore

import (
	"context"
	"time"

	"github.com/dalemusser/memberhub/internal/app/api/listquery"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/normalize"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages training sessions.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("trainings")}
}

// ListSpec declares what the trainings list endpoint recognizes.
func ListSpec() listquery.Spec {
	return listquery.Spec{
		DefaultLimit: 50,
		SearchFields: []string{"title_ci", "trainer", "location"},
		SortFields: map[string]bson.D{
			"createdAt": {{Key: "created_at", Value: 1}},
			"startsAt":  {{Key: "starts_at", Value: 1}},
			"title":     {{Key: "title_ci", Value: 1}},
		},
		DefaultSort: bson.D{{Key: "starts_at", Value: -1}},
	}
}

// List returns one page of sessions plus the filtered-set total. Cancelled
// sessions are excluded unless includeCancelled is set.
func (s *Store) List(ctx context.Context, q *listquery.Request, includeCancelled bool) ([]models.Training, int64, error) {
	scope := bson.M{}
	if !includeCancelled {
		scope["status"] = bson.M{"$ne": models.TrainingCancelled}
	}
	filter := q.Filter(scope)

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Server(err)
	}

	cursor, err := s.c.Find(ctx, filter, q.Find())
	if err != nil {
		return nil, 0, apperr.Server(err)
	}
	defer cursor.Close(ctx)

	sessions := []models.Training{}
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, 0, apperr.Server(err)
	}
	return sessions, total, nil
}

// GetByID loads a session, cancelled or not.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Training, error) {
	var t models.Training
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("training session not found")
		}
		return nil, apperr.Server(err)
	}
	return &t, nil
}

// Create inserts a new scheduled session.
func (s *Store) Create(ctx context.Context, t models.Training) (models.Training, error) {
	t.ID = primitive.NewObjectID()
	t.Title = normalize.Name(t.Title)
	t.TitleCI = text.Fold(t.Title)
	if t.Status == "" {
		t.Status = models.TrainingScheduled
	}

	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Training{}, apperr.Server(err)
	}
	return t, nil
}

// Update holds the fields a partial update may touch. Nil means untouched.
// EndsAt uses a double pointer so the caller can clear the open-ended end
// time (outer non-nil, inner nil) as well as set it.
type Update struct {
	Title       *string
	Description *string
	Location    *string
	Trainer     *string
	StartsAt    *time.Time
	EndsAt      **time.Time
	Capacity    *int
	Status      *string
}

// Update applies a partial update and returns the updated session.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*models.Training, error) {
	set := bson.M{"updated_at": time.Now()}
	unset := bson.M{}
	if upd.Title != nil {
		title := normalize.Name(*upd.Title)
		set["title"] = title
		set["title_ci"] = text.Fold(title)
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Location != nil {
		set["location"] = *upd.Location
	}
	if upd.Trainer != nil {
		set["trainer"] = *upd.Trainer
	}
	if upd.StartsAt != nil {
		set["starts_at"] = *upd.StartsAt
	}
	if upd.EndsAt != nil {
		if *upd.EndsAt != nil {
			set["ends_at"] = **upd.EndsAt
		} else {
			unset["ends_at"] = ""
		}
	}
	if upd.Capacity != nil {
		set["capacity"] = *upd.Capacity
	}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return s.findOneAndUpdate(ctx, bson.M{"_id": id}, update)
}

// Cancel soft-deletes a session. Cancelling twice is a Conflict; the
// registration history is kept either way.
func (s *Store) Cancel(ctx context.Context, id primitive.ObjectID) (*models.Training, error) {
	t, err := s.findOneAndUpdate(ctx,
		bson.M{"_id": id, "status": bson.M{"$ne": models.TrainingCancelled}},
		bson.M{"$set": bson.M{"status": models.TrainingCancelled, "updated_at": time.Now()}},
	)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			if _, getErr := s.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, apperr.Conflict("training session already cancelled")
		}
		return nil, err
	}
	return t, nil
}

// CountUpcoming counts scheduled sessions starting at or after now.
func (s *Store) CountUpcoming(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"status":    models.TrainingScheduled,
		"starts_at": bson.M{"$gte": now},
	})
	if err != nil {
		return 0, apperr.Server(err)
	}
	return n, nil
}

func (s *Store) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Training, error) {
	res := s.c.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var t models.Training
	if err := res.Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("training session not found")
		}
		return nil, apperr.Server(err)
	}
	return &t, nil
}

// internal/app/store/webinars/webinarstore.go
package webinarstore

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

// Store manages webinars.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("webinars")}
}

// ListSpec declares what the webinars list endpoint recognizes.
func ListSpec() listquery.Spec {
	return listquery.Spec{
		DefaultLimit: 50,
		SearchFields: []string{"title_ci", "speaker"},
		SortFields: map[string]bson.D{
			"createdAt":   {{Key: "created_at", Value: 1}},
			"scheduledAt": {{Key: "scheduled_at", Value: 1}},
			"title":       {{Key: "title_ci", Value: 1}},
		},
		DefaultSort: bson.D{{Key: "scheduled_at", Value: -1}},
	}
}

// List returns one page of webinars plus the filtered-set total. Cancelled
// webinars are excluded unless includeCancelled is set.
func (s *Store) List(ctx context.Context, q *listquery.Request, includeCancelled bool) ([]models.Webinar, int64, error) {
	scope := bson.M{}
	if !includeCancelled {
		scope["status"] = bson.M{"$ne": models.WebinarCancelled}
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

	webinars := []models.Webinar{}
	if err := cursor.All(ctx, &webinars); err != nil {
		return nil, 0, apperr.Server(err)
	}
	return webinars, total, nil
}

// GetByID loads a webinar, cancelled or not.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Webinar, error) {
	var w models.Webinar
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&w); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("webinar not found")
		}
		return nil, apperr.Server(err)
	}
	return &w, nil
}

// Create inserts a new scheduled webinar.
func (s *Store) Create(ctx context.Context, w models.Webinar) (models.Webinar, error) {
	w.ID = primitive.NewObjectID()
	w.Title = normalize.Name(w.Title)
	w.TitleCI = text.Fold(w.Title)
	if w.Status == "" {
		w.Status = models.WebinarScheduled
	}

	now := time.Now()
	w.CreatedAt = now
	w.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, w); err != nil {
		return models.Webinar{}, apperr.Server(err)
	}
	return w, nil
}

// Update holds the fields a partial update may touch. Nil means untouched.
type Update struct {
	Title       *string
	Description *string
	Speaker     *string
	JoinURL     *string
	ScheduledAt *time.Time
	Capacity    *int
	Status      *string
}

// Update applies a partial update and returns the updated webinar.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*models.Webinar, error) {
	set := bson.M{"updated_at": time.Now()}
	if upd.Title != nil {
		title := normalize.Name(*upd.Title)
		set["title"] = title
		set["title_ci"] = text.Fold(title)
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Speaker != nil {
		set["speaker"] = *upd.Speaker
	}
	if upd.JoinURL != nil {
		set["join_url"] = *upd.JoinURL
	}
	if upd.ScheduledAt != nil {
		set["scheduled_at"] = *upd.ScheduledAt
	}
	if upd.Capacity != nil {
		set["capacity"] = *upd.Capacity
	}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}

	return s.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set})
}

// Cancel soft-deletes a webinar. Cancelling twice is a Conflict.
func (s *Store) Cancel(ctx context.Context, id primitive.ObjectID) (*models.Webinar, error) {
	w, err := s.findOneAndUpdate(ctx,
		bson.M{"_id": id, "status": bson.M{"$ne": models.WebinarCancelled}},
		bson.M{"$set": bson.M{"status": models.WebinarCancelled, "updated_at": time.Now()}},
	)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			if _, getErr := s.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, apperr.Conflict("webinar already cancelled")
		}
		return nil, err
	}
	return w, nil
}

// CountUpcoming counts scheduled webinars at or after now.
func (s *Store) CountUpcoming(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"status":       models.WebinarScheduled,
		"scheduled_at": bson.M{"$gte": now},
	})
	if err != nil {
		return 0, apperr.Server(err)
	}
	return n, nil
}

func (s *Store) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Webinar, error) {
	res := s.c.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var w models.Webinar
	if err := res.Decode(&w); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("webinar not found")
		}
		return nil, apperr.Server(err)
	}
	return &w, nil
}

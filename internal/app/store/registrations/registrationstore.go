// internal/app/store/registrations/registrationstore.go
package registrationstore

import (
	"context"
	"time"

	"github.com/dalemusser/memberhub/internal/app/api/listquery"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/normalize"
	"github.com/dalemusser/memberhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// unrankedSentinel sorts unranked pending registrations after every ranked
// one. Ranks are small positive integers assigned per event.
const unrankedSentinel = 1 << 30

// Store manages registrations for both event kinds; the kind discriminator
// keeps training and webinar registrations from colliding.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("registrations")}
}

// ListSpec declares what a registration list endpoint recognizes.
func ListSpec() listquery.Spec {
	return listquery.Spec{
		DefaultLimit: 50,
		SearchFields: []string{"full_name_ci", "email"},
		SortFields: map[string]bson.D{
			"createdAt": {{Key: "created_at", Value: 1}},
			"email":     {{Key: "email", Value: 1}},
			"fullName":  {{Key: "full_name_ci", Value: 1}},
			"status":    {{Key: "status", Value: 1}, {Key: "created_at", Value: 1}},
		},
	}
}

// ListByEvent returns one page of an event's registrations plus the
// filtered-set total.
//
// When the page is restricted to pending registrations it is ordered by
// waitlist rank with unranked entries last, ties broken by creation time.
// That ordering needs a computed sort key, so the pending branch runs as an
// aggregation instead of a plain find.
func (s *Store) ListByEvent(ctx context.Context, kind string, eventID primitive.ObjectID, q *listquery.Request) ([]models.Registration, int64, error) {
	filter := q.Filter(bson.M{"kind": kind, "event_id": eventID})

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Server(err)
	}

	if pendingOnly(filter) && !q.IDMode() {
		return s.listPending(ctx, filter, q, total)
	}

	cursor, err := s.c.Find(ctx, filter, q.Find())
	if err != nil {
		return nil, 0, apperr.Server(err)
	}
	defer cursor.Close(ctx)

	regs := []models.Registration{}
	if err := cursor.All(ctx, &regs); err != nil {
		return nil, 0, apperr.Server(err)
	}
	return regs, total, nil
}

func pendingOnly(filter bson.M) bool {
	return filter["status"] == models.RegistrationPending
}

func (s *Store) listPending(ctx context.Context, filter bson.M, q *listquery.Request, total int64) ([]models.Registration, int64, error) {
	skip, limit := q.Window()
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$addFields", Value: bson.M{
			"rank_key": bson.M{"$ifNull": bson.A{"$waitlist_rank", unrankedSentinel}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "rank_key", Value: 1}, {Key: "created_at", Value: 1}}}},
		{{Key: "$skip", Value: skip}},
		{{Key: "$limit", Value: limit}},
	}
	cursor, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, apperr.Server(err)
	}
	defer cursor.Close(ctx)

	regs := []models.Registration{}
	if err := cursor.All(ctx, &regs); err != nil {
		return nil, 0, apperr.Server(err)
	}
	return regs, total, nil
}

// GetByID loads a registration, constrained to the given event so one
// event's route cannot address another event's registrations.
func (s *Store) GetByID(ctx context.Context, kind string, eventID, id primitive.ObjectID) (*models.Registration, error) {
	var reg models.Registration
	err := s.c.FindOne(ctx, bson.M{"_id": id, "kind": kind, "event_id": eventID}).Decode(&reg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("registration not found")
		}
		return nil, apperr.Server(err)
	}
	return &reg, nil
}

// Create inserts a pending registration. The (kind, event_id, email) unique
// index turns a repeat signup into a Conflict.
func (s *Store) Create(ctx context.Context, reg models.Registration) (models.Registration, error) {
	reg.ID = primitive.NewObjectID()
	reg.FullName = normalize.Name(reg.FullName)
	reg.FullNameCI = text.Fold(reg.FullName)
	reg.Email = normalize.Email(reg.Email)
	reg.Status = models.RegistrationPending
	reg.ConfirmedAt = nil
	reg.CancelledAt = nil

	now := time.Now()
	reg.CreatedAt = now
	reg.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, reg); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Registration{}, apperr.Conflict("this email is already registered for this event")
		}
		return models.Registration{}, apperr.Server(err)
	}
	return reg, nil
}

// Confirm moves a pending registration to confirmed. Confirmed and cancelled
// are both terminal, so confirming anything else is a Conflict.
func (s *Store) Confirm(ctx context.Context, kind string, eventID, id primitive.ObjectID) (*models.Registration, error) {
	now := time.Now()
	return s.transition(ctx, kind, eventID, id, bson.M{"$set": bson.M{
		"status":       models.RegistrationConfirmed,
		"confirmed_at": now,
		"updated_at":   now,
	}})
}

// Cancel moves a pending registration to cancelled.
func (s *Store) Cancel(ctx context.Context, kind string, eventID, id primitive.ObjectID) (*models.Registration, error) {
	now := time.Now()
	return s.transition(ctx, kind, eventID, id, bson.M{"$set": bson.M{
		"status":       models.RegistrationCancelled,
		"cancelled_at": now,
		"updated_at":   now,
	}})
}

func (s *Store) transition(ctx context.Context, kind string, eventID, id primitive.ObjectID, update bson.M) (*models.Registration, error) {
	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "kind": kind, "event_id": eventID, "status": models.RegistrationPending},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var reg models.Registration
	if err := res.Decode(&reg); err != nil {
		if err != mongo.ErrNoDocuments {
			return nil, apperr.Server(err)
		}
		existing, getErr := s.GetByID(ctx, kind, eventID, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, apperr.Conflict("registration is already " + existing.Status)
	}
	return &reg, nil
}

// SetWaitlistRank assigns or clears (nil) a pending registration's rank.
func (s *Store) SetWaitlistRank(ctx context.Context, kind string, eventID, id primitive.ObjectID, rank *int) (*models.Registration, error) {
	update := bson.M{"$set": bson.M{"updated_at": time.Now()}}
	if rank != nil {
		update["$set"].(bson.M)["waitlist_rank"] = *rank
	} else {
		update["$unset"] = bson.M{"waitlist_rank": ""}
	}

	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "kind": kind, "event_id": eventID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var reg models.Registration
	if err := res.Decode(&reg); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("registration not found")
		}
		return nil, apperr.Server(err)
	}
	return &reg, nil
}

// Delete hard-deletes a registration.
func (s *Store) Delete(ctx context.Context, kind string, eventID, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "kind": kind, "event_id": eventID})
	if err != nil {
		return apperr.Server(err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("registration not found")
	}
	return nil
}

// CountByStatus counts an event's registrations in one status. Capacity
// checks use this with RegistrationConfirmed.
func (s *Store) CountByStatus(ctx context.Context, kind string, eventID primitive.ObjectID, status string) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"kind": kind, "event_id": eventID, "status": status})
	if err != nil {
		return 0, apperr.Server(err)
	}
	return n, nil
}

// NextWaitlistRank returns one past the highest rank among the event's
// pending registrations, starting at 1.
func (s *Store) NextWaitlistRank(ctx context.Context, kind string, eventID primitive.ObjectID) (int, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "waitlist_rank", Value: -1}}).
		SetProjection(bson.M{"waitlist_rank": 1})
	var top struct {
		WaitlistRank *int `bson:"waitlist_rank"`
	}
	err := s.c.FindOne(ctx, bson.M{
		"kind":          kind,
		"event_id":      eventID,
		"status":        models.RegistrationPending,
		"waitlist_rank": bson.M{"$exists": true},
	}, opts).Decode(&top)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 1, nil
		}
		return 0, apperr.Server(err)
	}
	if top.WaitlistRank == nil {
		return 1, nil
	}
	return *top.WaitlistRank + 1, nil
}

// ConfirmedEmails returns the email of every confirmed registration for an
// event, for reminder fan-out.
func (s *Store) ConfirmedEmails(ctx context.Context, kind string, eventID primitive.ObjectID) ([]models.Registration, error) {
	cursor, err := s.c.Find(ctx,
		bson.M{"kind": kind, "event_id": eventID, "status": models.RegistrationConfirmed},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, apperr.Server(err)
	}
	defer cursor.Close(ctx)

	regs := []models.Registration{}
	if err := cursor.All(ctx, &regs); err != nil {
		return nil, apperr.Server(err)
	}
	return regs, nil
}

// CountForEvents returns per-event registration counts (all statuses) for a
// set of events of one kind, for list enrichment.
func (s *Store) CountForEvents(ctx context.Context, kind string, eventIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	if len(eventIDs) == 0 {
		return map[primitive.ObjectID]int64{}, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"kind": kind, "event_id": bson.M{"$in": eventIDs}}}},
		{{Key: "$group", Value: bson.M{"_id": "$event_id", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperr.Server(err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		EventID primitive.ObjectID `bson:"_id"`
		Count   int64              `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, apperr.Server(err)
	}

	out := make(map[primitive.ObjectID]int64, len(rows))
	for _, row := range rows {
		out[row.EventID] = row.Count
	}
	return out, nil
}

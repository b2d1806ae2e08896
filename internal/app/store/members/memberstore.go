// internal/app/store/members/memberstore.go
package memberstore

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

// Store manages membership applications and members.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("members")}
}

// ListSpec declares what the members list endpoint recognizes.
func ListSpec() listquery.Spec {
	return listquery.Spec{
		DefaultLimit: 50,
		SearchFields: []string{"first_name_ci", "last_name_ci", "email"},
		SortFields: map[string]bson.D{
			"createdAt": {{Key: "created_at", Value: 1}},
			"email":     {{Key: "email", Value: 1}},
			// Human-name sorts are composite: the other name is always the
			// secondary key.
			"lastName":  {{Key: "last_name_ci", Value: 1}, {Key: "first_name_ci", Value: 1}},
			"firstName": {{Key: "first_name_ci", Value: 1}, {Key: "last_name_ci", Value: 1}},
		},
	}
}

// List returns one page of members plus the filtered-set total. Archived
// members are excluded unless includeArchived is set; they remain fetchable
// by id either way.
func (s *Store) List(ctx context.Context, q *listquery.Request, includeArchived bool) ([]models.Member, int64, error) {
	scope := bson.M{}
	if !includeArchived {
		scope["archived"] = false
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

	members := []models.Member{}
	if err := cursor.All(ctx, &members); err != nil {
		return nil, 0, apperr.Server(err)
	}
	return members, total, nil
}

// GetByID loads a member by id, archived or not.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Member, error) {
	var m models.Member
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("member not found")
		}
		return nil, apperr.Server(err)
	}
	return &m, nil
}

// Create inserts a new application after normalizing fields. The email
// uniqueness index turns a duplicate into a domain Conflict.
func (s *Store) Create(ctx context.Context, m models.Member) (models.Member, error) {
	m.ID = primitive.NewObjectID()
	m.FirstName = normalize.Name(m.FirstName)
	m.FirstNameCI = text.Fold(m.FirstName)
	m.LastName = normalize.Name(m.LastName)
	m.LastNameCI = text.Fold(m.LastName)
	m.Email = normalize.Email(m.Email)
	if m.Status == "" {
		m.Status = models.MemberPending
	}
	m.Archived = false

	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Member{}, apperr.Conflict("an application with this email already exists")
		}
		return models.Member{}, apperr.Server(err)
	}
	return m, nil
}

// Update holds the fields a partial update may touch. Nil means untouched;
// a pointer to the zero value clears the field.
type Update struct {
	FirstName  *string
	LastName   *string
	Email      *string
	Phone      *string
	City       *string
	Profession *string
	Motivation *string
}

// Update applies a partial update and returns the updated member.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*models.Member, error) {
	set := bson.M{"updated_at": time.Now()}
	if upd.FirstName != nil {
		name := normalize.Name(*upd.FirstName)
		set["first_name"] = name
		set["first_name_ci"] = text.Fold(name)
	}
	if upd.LastName != nil {
		name := normalize.Name(*upd.LastName)
		set["last_name"] = name
		set["last_name_ci"] = text.Fold(name)
	}
	if upd.Email != nil {
		set["email"] = normalize.Email(*upd.Email)
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}
	if upd.City != nil {
		set["city"] = *upd.City
	}
	if upd.Profession != nil {
		set["profession"] = *upd.Profession
	}
	if upd.Motivation != nil {
		set["motivation"] = *upd.Motivation
	}

	return s.findOneAndUpdate(ctx, id, bson.M{"$set": set})
}

// Decide moves a pending application to approved or rejected. Both outcomes
// are terminal: deciding an already-decided application is a Conflict.
func (s *Store) Decide(ctx context.Context, id primitive.ObjectID, status string, decidedBy primitive.ObjectID) (*models.Member, error) {
	now := time.Now()
	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.MemberPending},
		bson.M{"$set": bson.M{
			"status":     status,
			"decided_at": now,
			"decided_by": decidedBy,
			"updated_at": now,
		}},
		findAfter(),
	)

	var m models.Member
	if err := res.Decode(&m); err != nil {
		if err != mongo.ErrNoDocuments {
			return nil, apperr.Server(err)
		}
		// Distinguish "gone" from "already decided".
		if _, getErr := s.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, apperr.Conflict("application already decided")
	}
	return &m, nil
}

// Archive soft-deletes a member. Archived members are excluded from default
// lists but stay fetchable by id: payments and registrations reference them.
func (s *Store) Archive(ctx context.Context, id primitive.ObjectID) (*models.Member, error) {
	now := time.Now()
	return s.findOneAndUpdate(ctx, id, bson.M{"$set": bson.M{
		"archived":    true,
		"archived_at": now,
		"updated_at":  now,
	}})
}

// SetPhotoURL records the stored photo's public URL.
func (s *Store) SetPhotoURL(ctx context.Context, id primitive.ObjectID, url string) (*models.Member, error) {
	return s.findOneAndUpdate(ctx, id, bson.M{"$set": bson.M{
		"photo_url":  url,
		"updated_at": time.Now(),
	}})
}

// CountByStatus returns the number of non-archived members per status.
func (s *Store) CountByStatus(ctx context.Context, status string) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"status": status, "archived": false})
	if err != nil {
		return 0, apperr.Server(err)
	}
	return n, nil
}

// MonthlyCounts returns creation counts bucketed by calendar month for the
// trailing months window, oldest first.
func (s *Store) MonthlyCounts(ctx context.Context, months int) (map[string]int64, error) {
	since := monthStart(time.Now().UTC()).AddDate(0, -(months - 1), 0)
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"created_at": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$dateToString": bson.M{"format": "%Y-%m", "date": "$created_at"}},
			"count": bson.M{"$sum": 1},
		}}},
	}
	cursor, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperr.Server(err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Month string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, apperr.Server(err)
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Month] = row.Count
	}
	return out, nil
}

func (s *Store) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Member, error) {
	res := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, findAfter())
	var m models.Member
	if err := res.Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("member not found")
		}
		if wafflemongo.IsDup(err) {
			return nil, apperr.Conflict("an application with this email already exists")
		}
		return nil, apperr.Server(err)
	}
	return &m, nil
}

func findAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

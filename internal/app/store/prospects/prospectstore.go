// internal/app/store/prospects/prospectstore.go
package prospectstore

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

// Store manages recruitment prospects.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("prospects")}
}

// ListSpec declares what the prospects list endpoint recognizes.
func ListSpec() listquery.Spec {
	return listquery.Spec{
		DefaultLimit: 50,
		SearchFields: []string{"full_name_ci", "email", "source"},
		SortFields: map[string]bson.D{
			"createdAt": {{Key: "created_at", Value: 1}},
			"fullName":  {{Key: "full_name_ci", Value: 1}},
			"stage":     {{Key: "stage", Value: 1}, {Key: "created_at", Value: 1}},
		},
	}
}

// List returns one page of prospects plus the filtered-set total. Archived
// prospects are excluded unless includeArchived is set.
func (s *Store) List(ctx context.Context, q *listquery.Request, includeArchived bool) ([]models.Prospect, int64, error) {
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

	prospects := []models.Prospect{}
	if err := cursor.All(ctx, &prospects); err != nil {
		return nil, 0, apperr.Server(err)
	}
	return prospects, total, nil
}

// GetByID loads a prospect, archived or not.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Prospect, error) {
	var p models.Prospect
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("prospect not found")
		}
		return nil, apperr.Server(err)
	}
	return &p, nil
}

// Create inserts a new prospect in the new stage unless one is given.
func (s *Store) Create(ctx context.Context, p models.Prospect) (models.Prospect, error) {
	p.ID = primitive.NewObjectID()
	p.FullName = normalize.Name(p.FullName)
	p.FullNameCI = text.Fold(p.FullName)
	p.Email = normalize.Email(p.Email)
	if p.Stage == "" {
		p.Stage = models.ProspectNew
	}
	p.Archived = false

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Prospect{}, apperr.Server(err)
	}
	return p, nil
}

// Update holds the fields a partial update may touch. Nil means untouched.
// ReferrerID uses a double pointer so the referrer link can be cleared.
type Update struct {
	FullName   *string
	Email      *string
	Source     *string
	Notes      *string
	Stage      *string
	ReferrerID **primitive.ObjectID
}

// Update applies a partial update and returns the updated prospect.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*models.Prospect, error) {
	set := bson.M{"updated_at": time.Now()}
	unset := bson.M{}
	if upd.FullName != nil {
		name := normalize.Name(*upd.FullName)
		set["full_name"] = name
		set["full_name_ci"] = text.Fold(name)
	}
	if upd.Email != nil {
		set["email"] = normalize.Email(*upd.Email)
	}
	if upd.Source != nil {
		set["source"] = *upd.Source
	}
	if upd.Notes != nil {
		set["notes"] = *upd.Notes
	}
	if upd.Stage != nil {
		set["stage"] = *upd.Stage
	}
	if upd.ReferrerID != nil {
		if *upd.ReferrerID != nil {
			set["referrer_id"] = **upd.ReferrerID
		} else {
			unset["referrer_id"] = ""
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return s.findOneAndUpdate(ctx, bson.M{"_id": id}, update)
}

// MarkInvited moves a prospect to the invited stage and stamps InvitedAt.
// Inviting an archived prospect is a Conflict.
func (s *Store) MarkInvited(ctx context.Context, id primitive.ObjectID) (*models.Prospect, error) {
	now := time.Now()
	p, err := s.findOneAndUpdate(ctx,
		bson.M{"_id": id, "archived": false},
		bson.M{"$set": bson.M{
			"stage":      models.ProspectInvited,
			"invited_at": now,
			"updated_at": now,
		}},
	)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			if _, getErr := s.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, apperr.Conflict("prospect is archived")
		}
		return nil, err
	}
	return p, nil
}

// Archive soft-deletes a prospect; the recruitment history survives.
func (s *Store) Archive(ctx context.Context, id primitive.ObjectID) (*models.Prospect, error) {
	now := time.Now()
	return s.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"archived":    true,
		"archived_at": now,
		"updated_at":  now,
	}})
}

// CountByStage returns per-stage counts over non-archived prospects.
func (s *Store) CountByStage(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"archived": false}}},
		{{Key: "$group", Value: bson.M{"_id": "$stage", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperr.Server(err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Stage string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, apperr.Server(err)
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Stage] = row.Count
	}
	return out, nil
}

func (s *Store) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Prospect, error) {
	res := s.c.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var p models.Prospect
	if err := res.Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("prospect not found")
		}
		return nil, apperr.Server(err)
	}
	return &p, nil
}

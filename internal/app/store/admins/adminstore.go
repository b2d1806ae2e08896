// internal/app/store/admins/adminstore.go
package adminstore

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

// Store manages admin accounts. Accounts are never hard-deleted; removal is
// a status change to disabled.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("admins")}
}

// ListSpec declares what the admins list endpoint recognizes.
func ListSpec() listquery.Spec {
	return listquery.Spec{
		DefaultLimit: 50,
		SearchFields: []string{"full_name_ci", "email"},
		SortFields: map[string]bson.D{
			"createdAt": {{Key: "created_at", Value: 1}},
			"email":     {{Key: "email", Value: 1}},
			"fullName":  {{Key: "full_name_ci", Value: 1}},
			"role":      {{Key: "role", Value: 1}, {Key: "full_name_ci", Value: 1}},
		},
	}
}

// List returns one page of admin accounts plus the filtered-set total.
func (s *Store) List(ctx context.Context, q *listquery.Request) ([]models.AdminUser, int64, error) {
	filter := q.Filter(bson.M{})

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Server(err)
	}

	cursor, err := s.c.Find(ctx, filter, q.Find())
	if err != nil {
		return nil, 0, apperr.Server(err)
	}
	defer cursor.Close(ctx)

	admins := []models.AdminUser{}
	if err := cursor.All(ctx, &admins); err != nil {
		return nil, 0, apperr.Server(err)
	}
	return admins, total, nil
}

// GetByID loads an admin account.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.AdminUser, error) {
	var a models.AdminUser
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("admin account not found")
		}
		return nil, apperr.Server(err)
	}
	return &a, nil
}

// FetchAdmin loads an admin by token subject. It satisfies the auth
// middleware's Fetcher so every request re-checks the live account state.
func (s *Store) FetchAdmin(ctx context.Context, idHex string) (*models.AdminUser, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, apperr.Auth("invalid token subject")
	}
	a, err := s.GetByID(ctx, id)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.Auth("account no longer exists")
		}
		return nil, err
	}
	return a, nil
}

// GetByEmail loads an admin for login. Missing accounts come back as Auth,
// not NotFound, so login responses never confirm which emails exist.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var a models.AdminUser
	err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&a)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.Auth("invalid credentials")
		}
		return nil, apperr.Server(err)
	}
	return &a, nil
}

// Create inserts a new active admin account. PasswordHash must already be
// set by the caller. The email uniqueness index turns a duplicate into a
// Conflict.
func (s *Store) Create(ctx context.Context, a models.AdminUser) (models.AdminUser, error) {
	a.ID = primitive.NewObjectID()
	a.FullName = normalize.Name(a.FullName)
	a.FullNameCI = text.Fold(a.FullName)
	a.Email = normalize.Email(a.Email)
	if a.Status == "" {
		a.Status = models.AdminActive
	}

	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.AdminUser{}, apperr.Conflict("an admin with this email already exists")
		}
		return models.AdminUser{}, apperr.Server(err)
	}
	return a, nil
}

// Update holds the fields a partial update may touch. Nil means untouched.
type Update struct {
	FullName    *string
	Email       *string
	Role        *string
	Permissions *models.Permissions
}

// Update applies a partial update and returns the updated account.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*models.AdminUser, error) {
	set := bson.M{"updated_at": time.Now()}
	if upd.FullName != nil {
		name := normalize.Name(*upd.FullName)
		set["full_name"] = name
		set["full_name_ci"] = text.Fold(name)
	}
	if upd.Email != nil {
		set["email"] = normalize.Email(*upd.Email)
	}
	if upd.Role != nil {
		set["role"] = *upd.Role
	}
	if upd.Permissions != nil {
		set["permissions"] = *upd.Permissions
	}

	return s.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set})
}

// SetPasswordHash replaces the account's password hash.
func (s *Store) SetPasswordHash(ctx context.Context, id primitive.ObjectID, hash string) (*models.AdminUser, error) {
	return s.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now(),
	}})
}

// SetStatus flips an account between active and disabled. Flipping to the
// status the account already has is a Conflict.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.AdminUser, error) {
	a, err := s.findOneAndUpdate(ctx,
		bson.M{"_id": id, "status": bson.M{"$ne": status}},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
	)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			if _, getErr := s.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, apperr.Conflict("account is already " + status)
		}
		return nil, err
	}
	return a, nil
}

// Suspend sets a suspension expiry on an account.
func (s *Store) Suspend(ctx context.Context, id primitive.ObjectID, until time.Time) (*models.AdminUser, error) {
	return s.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"suspended_until": until,
		"updated_at":      time.Now(),
	}})
}

// ClearSuspension removes the suspension expiry. Used both for explicit
// lifting and for the lazy reactivation at login once the expiry has passed.
func (s *Store) ClearSuspension(ctx context.Context, id primitive.ObjectID) (*models.AdminUser, error) {
	return s.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{
		"$unset": bson.M{"suspended_until": ""},
		"$set":   bson.M{"updated_at": time.Now()},
	})
}

// RecordLogin stamps the account's last successful login.
func (s *Store) RecordLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"last_login_at": at}})
	if err != nil {
		return apperr.Server(err)
	}
	return nil
}

// CountActive counts accounts in the active status.
func (s *Store) CountActive(ctx context.Context) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"status": models.AdminActive})
	if err != nil {
		return 0, apperr.Server(err)
	}
	return n, nil
}

func (s *Store) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.AdminUser, error) {
	res := s.c.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var a models.AdminUser
	if err := res.Decode(&a); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("admin account not found")
		}
		if wafflemongo.IsDup(err) {
			return nil, apperr.Conflict("an admin with this email already exists")
		}
		return nil, apperr.Server(err)
	}
	return &a, nil
}

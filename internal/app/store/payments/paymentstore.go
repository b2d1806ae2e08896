// internal/app/store/payments/paymentstore.go
package paymentstore

import (
	"context"
	"time"

	"github.com/dalemusser/memberhub/internal/app/api/listquery"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages treasury payments.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("payments")}
}

// ListSpec declares what the payments list endpoint recognizes.
func ListSpec() listquery.Spec {
	return listquery.Spec{
		DefaultLimit: 50,
		SearchFields: []string{"reference", "note"},
		SortFields: map[string]bson.D{
			"createdAt": {{Key: "created_at", Value: 1}},
			"paidAt":    {{Key: "paid_at", Value: 1}},
			"amount":    {{Key: "amount_cents", Value: 1}},
		},
		DefaultSort: bson.D{{Key: "paid_at", Value: -1}},
	}
}

// List returns one page of payments plus the filtered-set total.
func (s *Store) List(ctx context.Context, q *listquery.Request) ([]models.Payment, int64, error) {
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

	payments := []models.Payment{}
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, 0, apperr.Server(err)
	}
	return payments, total, nil
}

// GetByID loads one payment.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	var p models.Payment
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("payment not found")
		}
		return nil, apperr.Server(err)
	}
	return &p, nil
}

// Create inserts a payment.
func (s *Store) Create(ctx context.Context, p models.Payment) (models.Payment, error) {
	p.ID = primitive.NewObjectID()
	if p.PaidAt.IsZero() {
		p.PaidAt = time.Now()
	}

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Payment{}, apperr.Server(err)
	}
	return p, nil
}

// Update holds the fields a partial update may touch. Nil means untouched.
// MemberID uses a double pointer so the link to a member can be cleared.
type Update struct {
	MemberID    **primitive.ObjectID
	AmountCents *int64
	Currency    *string
	Category    *string
	Method      *string
	Reference   *string
	Note        *string
	PaidAt      *time.Time
}

// Update applies a partial update and returns the updated payment.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*models.Payment, error) {
	set := bson.M{"updated_at": time.Now()}
	unset := bson.M{}
	if upd.MemberID != nil {
		if *upd.MemberID != nil {
			set["member_id"] = **upd.MemberID
		} else {
			unset["member_id"] = ""
		}
	}
	if upd.AmountCents != nil {
		set["amount_cents"] = *upd.AmountCents
	}
	if upd.Currency != nil {
		set["currency"] = *upd.Currency
	}
	if upd.Category != nil {
		set["category"] = *upd.Category
	}
	if upd.Method != nil {
		set["method"] = *upd.Method
	}
	if upd.Reference != nil {
		set["reference"] = *upd.Reference
	}
	if upd.Note != nil {
		set["note"] = *upd.Note
	}
	if upd.PaidAt != nil {
		set["paid_at"] = *upd.PaidAt
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var p models.Payment
	if err := res.Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("payment not found")
		}
		return nil, apperr.Server(err)
	}
	return &p, nil
}

// Delete hard-deletes a payment. Treasury corrections are delete plus
// re-entry, so there is no soft-delete state to keep.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperr.Server(err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("payment not found")
	}
	return nil
}

// CurrencyTotal is one currency's aggregate over a payment set.
type CurrencyTotal struct {
	Currency   string `bson:"_id" json:"currency"`
	TotalCents int64  `bson:"total_cents" json:"total_cents"`
	Count      int64  `bson:"count" json:"count"`
}

// TotalsByCurrency sums payments per currency, optionally restricted to one
// category and a paid-at window (either bound may be zero).
func (s *Store) TotalsByCurrency(ctx context.Context, category string, from, to time.Time) ([]CurrencyTotal, error) {
	match := bson.M{}
	if category != "" {
		match["category"] = category
	}
	if window := paidWindow(from, to); window != nil {
		match["paid_at"] = window
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":         "$currency",
			"total_cents": bson.M{"$sum": "$amount_cents"},
			"count":       bson.M{"$sum": 1},
		}}},
	}
	cursor, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperr.Server(err)
	}
	defer cursor.Close(ctx)

	var totals []CurrencyTotal
	if err := cursor.All(ctx, &totals); err != nil {
		return nil, apperr.Server(err)
	}
	return totals, nil
}

// MonthlyTotal is one (month, currency) bucket of received payments.
type MonthlyTotal struct {
	Month      string `bson:"month"`
	Currency   string `bson:"currency"`
	TotalCents int64  `bson:"total_cents"`
	Count      int64  `bson:"count"`
}

// MonthlyTotals buckets payments by calendar month and currency for the
// trailing months window, oldest first.
func (s *Store) MonthlyTotals(ctx context.Context, months int) ([]MonthlyTotal, error) {
	now := time.Now().UTC()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"paid_at": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"month":    bson.M{"$dateToString": bson.M{"format": "%Y-%m", "date": "$paid_at"}},
				"currency": "$currency",
			},
			"total_cents": bson.M{"$sum": "$amount_cents"},
			"count":       bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":         0,
			"month":       "$_id.month",
			"currency":    "$_id.currency",
			"total_cents": 1,
			"count":       1,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "month", Value: 1}, {Key: "currency", Value: 1}}}},
	}
	cursor, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperr.Server(err)
	}
	defer cursor.Close(ctx)

	var totals []MonthlyTotal
	if err := cursor.All(ctx, &totals); err != nil {
		return nil, apperr.Server(err)
	}
	return totals, nil
}

// DuesPayerCount counts distinct members with at least one dues payment in
// the window.
func (s *Store) DuesPayerCount(ctx context.Context, from, to time.Time) (int64, error) {
	match := bson.M{"category": models.PaymentDues, "member_id": bson.M{"$exists": true}}
	if window := paidWindow(from, to); window != nil {
		match["paid_at"] = window
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": "$member_id"}}},
		{{Key: "$count", Value: "n"}},
	}
	cursor, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, apperr.Server(err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		N int64 `bson:"n"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, apperr.Server(err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].N, nil
}

func paidWindow(from, to time.Time) bson.M {
	window := bson.M{}
	if !from.IsZero() {
		window["$gte"] = from
	}
	if !to.IsZero() {
		window["$lte"] = to
	}
	if len(window) == 0 {
		return nil
	}
	return window
}

// internal/domain/models/payment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment categories tracked by the treasury.
const (
	PaymentDues     = "dues"
	PaymentDonation = "donation"
	PaymentOther    = "other"
)

// Payment is a treasury entry: dues, a donation, or another receipt.
// Amounts are integer cents in the payment's own currency; statistics
// convert to EUR at configured rates. Payments are hard-deleted; a
// treasury correction is a deletion plus a re-entry.
type Payment struct {
	ID       primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	MemberID *primitive.ObjectID `bson:"member_id,omitempty" json:"member_id,omitempty"`

	AmountCents int64  `bson:"amount_cents" json:"amount_cents"`
	Currency    string `bson:"currency" json:"currency"` // ISO 4217, e.g. "EUR"
	Category    string `bson:"category" json:"category"`
	Method      string `bson:"method,omitempty" json:"method,omitempty"`
	Reference   string `bson:"reference,omitempty" json:"reference,omitempty"`
	Note        string `bson:"note,omitempty" json:"note,omitempty"`

	PaidAt time.Time `bson:"paid_at" json:"paid_at"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

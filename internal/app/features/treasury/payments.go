// internal/app/features/treasury/payments.go
package treasury

import (
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/memberhub/internal/app/api/body"
	"github.com/dalemusser/memberhub/internal/app/api/listquery"
	"github.com/dalemusser/memberhub/internal/app/api/respond"
	"github.com/dalemusser/memberhub/internal/app/api/router"
	"github.com/dalemusser/memberhub/internal/app/store/audit"
	paymentstore "github.com/dalemusser/memberhub/internal/app/store/payments"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/app/system/effects"
	"github.com/dalemusser/memberhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/memberhub/internal/app/system/inputval"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeList handles GET /api/treasury/payments. Recognized filters beyond
// the standard options: category, currency, memberId, from, to (paid_at
// window).
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request, _ router.Params) {
	q := listquery.Parse(r, paymentstore.ListSpec())
	q.Eq("category", query.Get(r, "category"))
	q.Eq("currency", strings.ToUpper(query.Get(r, "currency")))
	q.EqID("member_id", query.Get(r, "memberId"))
	q.Range("paid_at", parseTime(query.Get(r, "from")), parseTime(query.Get(r, "to")))

	payments, total, err := h.Payments.List(r.Context(), &q)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.List(w, payments, q.PageOf(total))
}

// ServeGet handles GET /api/treasury/payments/:id.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request, p router.Params) {
	id, err := primitive.ObjectIDFromHex(p["id"])
	if err != nil {
		respond.Err(w, h.Log, apperr.NotFound("payment not found"))
		return
	}
	pay, err := h.Payments.GetByID(r.Context(), id)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.OK(w, pay)
}

type createRequest struct {
	MemberID    *primitive.ObjectID `json:"member_id"`
	AmountCents int64               `json:"amount_cents"`
	Currency    string              `json:"currency"`
	Category    string              `json:"category"`
	Method      string              `json:"method"`
	Reference   string              `json:"reference"`
	Note        string              `json:"note"`
	PaidAt      *time.Time          `json:"paid_at"`
}

// ServeCreate handles POST /api/treasury/payments.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request, _ router.Params) {
	admin, ok := auth.CurrentAdmin(r)
	if !ok {
		respond.Err(w, h.Log, apperr.Auth("not authenticated"))
		return
	}
	var req createRequest
	if err := body.Decode(r, &req); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	var missing []string
	if req.AmountCents == 0 {
		missing = append(missing, "amount_cents")
	}
	if req.Currency == "" {
		missing = append(missing, "currency")
	}
	if req.Category == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		respond.Err(w, h.Log, apperr.Validation(missing...))
		return
	}
	if req.AmountCents < 0 {
		respond.Err(w, h.Log, apperr.Validationf("amount_cents must be positive"))
		return
	}
	if !inputval.IsValidCurrency(req.Currency) {
		respond.Err(w, h.Log, apperr.Validationf("currency must be an ISO 4217 code"))
		return
	}
	if !inputval.IsValidPaymentCategory(req.Category) {
		respond.Err(w, h.Log, apperr.Validationf("unknown category %q", req.Category))
		return
	}

	pay := models.Payment{
		MemberID:    req.MemberID,
		AmountCents: req.AmountCents,
		Currency:    strings.ToUpper(req.Currency),
		Category:    strings.ToLower(req.Category),
		Method:      htmlsanitize.StripTags(req.Method),
		Reference:   htmlsanitize.StripTags(req.Reference),
		Note:        htmlsanitize.StripTags(req.Note),
	}
	if req.PaidAt != nil {
		pay.PaidAt = *req.PaidAt
	}

	created, err := h.Payments.Create(r.Context(), pay)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	h.Effects.Dispatch(r.Context(), r, admin.ID, []effects.Effect{
		effects.Audit(audit.EventPaymentRecorded, created.ID, map[string]string{
			"category": created.Category,
			"currency": created.Currency,
		}),
	})
	respond.Created(w, created)
}

// ServeUpdate handles PUT /api/treasury/payments/:id.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request, p router.Params) {
	id, err := primitive.ObjectIDFromHex(p["id"])
	if err != nil {
		respond.Err(w, h.Log, apperr.NotFound("payment not found"))
		return
	}
	admin, ok := auth.CurrentAdmin(r)
	if !ok {
		respond.Err(w, h.Log, apperr.Auth("not authenticated"))
		return
	}
	patch, err := body.DecodePatch(r)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	var upd paymentstore.Update
	if v, present, err := patch.Int64("amount_cents"); err != nil {
		respond.Err(w, h.Log, err)
		return
	} else if present {
		if v <= 0 {
			respond.Err(w, h.Log, apperr.Validationf("amount_cents must be positive"))
			return
		}
		upd.AmountCents = &v
	}
	if v, present, err := patch.String("currency"); err != nil {
		respond.Err(w, h.Log, err)
		return
	} else if present {
		if !inputval.IsValidCurrency(v) {
			respond.Err(w, h.Log, apperr.Validationf("currency must be an ISO 4217 code"))
			return
		}
		v = strings.ToUpper(v)
		upd.Currency = &v
	}
	if v, present, err := patch.String("category"); err != nil {
		respond.Err(w, h.Log, err)
		return
	} else if present {
		if !inputval.IsValidPaymentCategory(v) {
			respond.Err(w, h.Log, apperr.Validationf("unknown category %q", v))
			return
		}
		v = strings.ToLower(v)
		upd.Category = &v
	}
	if v, present, err := patch.String("method"); err != nil {
		respond.Err(w, h.Log, err)
		return
	} else if present {
		v = htmlsanitize.StripTags(v)
		upd.Method = &v
	}
	if v, present, err := patch.String("reference"); err != nil {
		respond.Err(w, h.Log, err)
		return
	} else if present {
		v = htmlsanitize.StripTags(v)
		upd.Reference = &v
	}
	if v, present, err := patch.String("note"); err != nil {
		respond.Err(w, h.Log, err)
		return
	} else if present {
		v = htmlsanitize.StripTags(v)
		upd.Note = &v
	}
	if v, present, err := patch.Time("paid_at"); err != nil {
		respond.Err(w, h.Log, err)
		return
	} else if present {
		if v == nil {
			respond.Err(w, h.Log, apperr.Validationf("paid_at must not be null"))
			return
		}
		upd.PaidAt = v
	}
	if v, present, err := patch.String("member_id"); err != nil {
		respond.Err(w, h.Log, err)
		return
	} else if present {
		if v == "" {
			var cleared *primitive.ObjectID
			upd.MemberID = &cleared
		} else {
			oid, err := primitive.ObjectIDFromHex(v)
			if err != nil {
				respond.Err(w, h.Log, apperr.Validationf("member_id must be a valid id"))
				return
			}
			ptr := &oid
			upd.MemberID = &ptr
		}
	}

	pay, err := h.Payments.Update(r.Context(), id, upd)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	h.Effects.Dispatch(r.Context(), r, admin.ID, []effects.Effect{
		effects.Audit(audit.EventPaymentUpdated, pay.ID, nil),
	})
	respond.OK(w, pay)
}

// ServeDelete handles DELETE /api/treasury/payments/:id. A correction is a
// deletion plus a re-entry, so this deletes for real.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request, p router.Params) {
	id, err := primitive.ObjectIDFromHex(p["id"])
	if err != nil {
		respond.Err(w, h.Log, apperr.NotFound("payment not found"))
		return
	}
	admin, ok := auth.CurrentAdmin(r)
	if !ok {
		respond.Err(w, h.Log, apperr.Auth("not authenticated"))
		return
	}

	if err := h.Payments.Delete(r.Context(), id); err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	h.Effects.Dispatch(r.Context(), r, admin.ID, []effects.Effect{
		effects.Audit(audit.EventPaymentDeleted, id, nil),
	})
	respond.Message(w, "payment deleted")
}

func parseTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &t
}

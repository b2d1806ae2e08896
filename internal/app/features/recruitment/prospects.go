// internal/app/features/recruitment/prospects.go
package recruitment

import (
	"net/http"

	"github.com/dalemusser/memberhub/internal/app/api/body"
	"github.com/dalemusser/memberhub/internal/app/api/listquery"
	"github.com/dalemusser/memberhub/internal/app/api/respond"
	"github.com/dalemusser/memberhub/internal/app/api/router"
	"github.com/dalemusser/memberhub/internal/app/store/audit"
	prospectstore "github.com/dalemusser/memberhub/internal/app/store/prospects"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/app/system/effects"
	"github.com/dalemusser/memberhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/memberhub/internal/app/system/inputval"
	"github.com/dalemusser/memberhub/internal/app/system/webhook"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeList handles GET /api/recruitment/prospects. Recognized filters
// beyond the standard options: stage, includeArchived.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request, _ router.Params) {
	q := listquery.Parse(r, prospectstore.ListSpec())
	q.Eq("stage", query.Get(r, "stage"))
	includeArchived := query.Get(r, "includeArchived") == "true"

	prospects, total, err := h.Prospects.List(r.Context(), &q, includeArchived)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.List(w, prospects, q.PageOf(total))
}

// ServeGet handles GET /api/recruitment/prospects/:id.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request, p router.Params) {
	id, err := primitive.ObjectIDFromHex(p["id"])
	if err != nil {
		respond.Err(w, h.Log, apperr.NotFound("prospect not found"))
		return
	}
	pr, err := h.Prospects.GetByID(r.Context(), id)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.OK(w, pr)
}

type createRequest struct {
	FullName   string              `json:"full_name"`
	Email      string              `json:"email"`
	Source     string              `json:"source"`
	Notes      string              `json:"notes"`
	ReferrerID *primitive.ObjectID `json:"referrer_id"`
}

// ServeCreate handles POST /api/recruitment/prospects.
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
	if req.FullName == "" {
		missing = append(missing, "full_name")
	}
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		respond.Err(w, h.Log, apperr.Validation(missing...))
		return
	}
	if !inputval.IsValidEmail(req.Email) {
		respond.Err(w, h.Log, apperr.Validationf("invalid email address"))
		return
	}

	pr, err := h.Prospects.Create(r.Context(), models.Prospect{
		FullName:   req.FullName,
		Email:      req.Email,
		Source:     htmlsanitize.StripTags(req.Source),
		Notes:      htmlsanitize.StripTags(req.Notes),
		ReferrerID: req.ReferrerID,
	})
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	h.Effects.Dispatch(r.Context(), r, admin.ID, []effects.Effect{
		effects.Audit(audit.EventProspectCreated, pr.ID, map[string]string{"email": pr.Email}),
	})
	respond.Created(w, pr)
}

// ServeUpdate handles PUT /api/recruitment/prospects/:id.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request, p router.Params) {
	id, err := primitive.ObjectIDFromHex(p["id"])
	if err != nil {
		respond.Err(w, h.Log, apperr.NotFound("prospect not found"))
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

	var upd prospectstore.Update
	if v, present, err := patch.String("full_name"); err != nil {
		respond.Err(w, h.Log, err)
		return
	} else if present {
		if v == "" {
			respond.Err(w, h.Log, apperr.Validationf("full_name must not be empty"))
			return
		}
		upd.FullName = &v
	}
	if v, present, err := patch.String("email"); err != nil {
		respond.Err(w, h.Log, err)
		return
	} else if present {
		if !inputval.IsValidEmail(v) {
			respond.Err(w, h.Log, apperr.Validationf("invalid email address"))
			return
		}
		upd.Email = &v
	}
	if v, present, err := patch.String("source"); err != nil {
		respond.Err(w, h.Log, err)
		return
	} else if present {
		v = htmlsanitize.StripTags(v)
		upd.Source = &v
	}
	if v, present, err := patch.String("notes"); err != nil {
		respond.Err(w, h.Log, err)
		return
	} else if present {
		v = htmlsanitize.StripTags(v)
		upd.Notes = &v
	}
	if v, present, err := patch.String("stage"); err != nil {
		respond.Err(w, h.Log, err)
		return
	} else if present {
		if !inputval.IsValidProspectStage(v) {
			respond.Err(w, h.Log, apperr.Validationf("unknown stage %q", v))
			return
		}
		upd.Stage = &v
	}
	if v, present, err := patch.String("referrer_id"); err != nil {
		respond.Err(w, h.Log, err)
		return
	} else if present {
		if v == "" {
			var cleared *primitive.ObjectID
			upd.ReferrerID = &cleared
		} else {
			oid, err := primitive.ObjectIDFromHex(v)
			if err != nil {
				respond.Err(w, h.Log, apperr.Validationf("referrer_id must be a valid id"))
				return
			}
			ptr := &oid
			upd.ReferrerID = &ptr
		}
	}

	pr, err := h.Prospects.Update(r.Context(), id, upd)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	h.Effects.Dispatch(r.Context(), r, admin.ID, []effects.Effect{
		effects.Audit(audit.EventProspectUpdated, pr.ID, nil),
	})
	respond.OK(w, pr)
}

// ServeInvite handles POST /api/recruitment/prospects/:id/invite: moves the
// prospect to the invited stage and sends the invitation email.
func (h *Handler) ServeInvite(w http.ResponseWriter, r *http.Request, p router.Params) {
	id, err := primitive.ObjectIDFromHex(p["id"])
	if err != nil {
		respond.Err(w, h.Log, apperr.NotFound("prospect not found"))
		return
	}
	admin, ok := auth.CurrentAdmin(r)
	if !ok {
		respond.Err(w, h.Log, apperr.Auth("not authenticated"))
		return
	}

	pr, err := h.Prospects.MarkInvited(r.Context(), id)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	h.Effects.Dispatch(r.Context(), r, admin.ID, []effects.Effect{
		effects.Audit(audit.EventProspectInvited, pr.ID, nil),
		effects.Email(webhook.Notification{
			Type:      webhook.TypeProspectInvite,
			Recipient: pr.Email,
			Fields:    map[string]string{"full_name": pr.FullName},
		}),
	})
	respond.OK(w, pr)
}

// ServeArchive handles DELETE /api/recruitment/prospects/:id.
func (h *Handler) ServeArchive(w http.ResponseWriter, r *http.Request, p router.Params) {
	id, err := primitive.ObjectIDFromHex(p["id"])
	if err != nil {
		respond.Err(w, h.Log, apperr.NotFound("prospect not found"))
		return
	}
	admin, ok := auth.CurrentAdmin(r)
	if !ok {
		respond.Err(w, h.Log, apperr.Auth("not authenticated"))
		return
	}

	pr, err := h.Prospects.Archive(r.Context(), id)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	h.Effects.Dispatch(r.Context(), r, admin.ID, []effects.Effect{
		effects.Audit(audit.EventProspectArchived, pr.ID, nil),
	})
	respond.Message(w, "prospect archived")
}

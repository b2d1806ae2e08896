// internal/app/features/applications/update.go
package applications

import (
	"net/http"

	"github.com/dalemusser/memberhub/internal/app/api/body"
	"github.com/dalemusser/memberhub/internal/app/api/respond"
	"github.com/dalemusser/memberhub/internal/app/api/router"
	memberstore "github.com/dalemusser/memberhub/internal/app/store/members"
	"github.com/dalemusser/memberhub/internal/app/store/audit"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/app/system/effects"
	"github.com/dalemusser/memberhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/memberhub/internal/app/system/inputval"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeUpdate handles PUT /api/applications/:id. Fields omitted from the
// body stay untouched; fields sent as null or empty are cleared.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request, p router.Params) {
	id, err := primitive.ObjectIDFromHex(p["id"])
	if err != nil {
		respond.Err(w, h.Log, apperr.NotFound("member not found"))
		return
	}
	patch, err := body.DecodePatch(r)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	var upd memberstore.Update
	assign := func(key string, dst **string, sanitize bool) bool {
		v, present, err := patch.String(key)
		if err != nil {
			respond.Err(w, h.Log, err)
			return false
		}
		if present {
			if sanitize {
				v = htmlsanitize.StripTags(v)
			}
			*dst = &v
		}
		return true
	}

	if !assign("first_name", &upd.FirstName, false) ||
		!assign("last_name", &upd.LastName, false) ||
		!assign("email", &upd.Email, false) ||
		!assign("phone", &upd.Phone, true) ||
		!assign("city", &upd.City, true) ||
		!assign("profession", &upd.Profession, true) ||
		!assign("motivation", &upd.Motivation, true) {
		return
	}
	if upd.Email != nil && !inputval.IsValidEmail(*upd.Email) {
		respond.Err(w, h.Log, apperr.Validationf("invalid email address"))
		return
	}

	m, err := h.Members.Update(r.Context(), id, upd)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	if admin, ok := auth.CurrentAdmin(r); ok {
		h.Effects.Dispatch(r.Context(), r, admin.ID, []effects.Effect{
			effects.Audit(audit.EventApplicationUpdated, m.ID, nil),
		})
	}
	respond.OK(w, m)
}

// ServeArchive handles DELETE /api/applications/:id. Deletion is an archive:
// the record drops out of default lists but stays addressable by id.
func (h *Handler) ServeArchive(w http.ResponseWriter, r *http.Request, p router.Params) {
	id, err := primitive.ObjectIDFromHex(p["id"])
	if err != nil {
		respond.Err(w, h.Log, apperr.NotFound("member not found"))
		return
	}
	m, err := h.Members.Archive(r.Context(), id)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	if admin, ok := auth.CurrentAdmin(r); ok {
		h.Effects.Dispatch(r.Context(), r, admin.ID, []effects.Effect{
			effects.Audit(audit.EventApplicationArchived, m.ID, nil),
		})
	}
	respond.Message(w, "application archived")
}

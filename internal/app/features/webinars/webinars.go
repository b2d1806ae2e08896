// internal/app/features/webinars/webinars.go
package webinars

import (
	"net/http"
	"time"

	"github.com/dalemusser/memberhub/internal/app/api/body"
	"github.com/dalemusser/memberhub/internal/app/api/listquery"
	"github.com/dalemusser/memberhub/internal/app/api/respond"
	"github.com/dalemusser/memberhub/internal/app/api/router"
	"github.com/dalemusser/memberhub/internal/app/store/audit"
	webinarstore "github.com/dalemusser/memberhub/internal/app/store/webinars"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/app/system/effects"
	"github.com/dalemusser/memberhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/memberhub/internal/app/system/inputval"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type webinarListItem struct {
	models.Webinar
	Registrations int64 `json:"registrations"`
}

// ServeList handles GET /api/webinars. Recognized filters beyond the
// standard options: status, includeCancelled, from, to (scheduled_at
// window). Each item carries its registration count; the count lookup is
// enrichment only, so its failure degrades the counts to zero instead of
// failing the list.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request, _ router.Params) {
	q := listquery.Parse(r, webinarstore.ListSpec())
	q.Eq("status", query.Get(r, "status"))
	q.Range("scheduled_at", parseTime(query.Get(r, "from")), parseTime(query.Get(r, "to")))
	includeCancelled := query.Get(r, "includeCancelled") == "true"

	webinars, total, err := h.Webinars.List(r.Context(), &q, includeCancelled)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	ids := make([]primitive.ObjectID, len(webinars))
	for i, wb := range webinars {
		ids[i] = wb.ID
	}
	counts, err := h.RegStore.CountForEvents(r.Context(), models.EventKindWebinar, ids)
	if err != nil {
		h.Log.Warn("registration count enrichment failed", zap.Error(err))
		counts = nil
	}

	items := make([]webinarListItem, len(webinars))
	for i, wb := range webinars {
		items[i] = webinarListItem{Webinar: wb, Registrations: counts[wb.ID]}
	}
	respond.List(w, items, q.PageOf(total))
}

// ServeGet handles GET /api/webinars/:id.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request, p router.Params) {
	id, err := primitive.ObjectIDFromHex(p["id"])
	if err != nil {
		respond.Err(w, h.Log, apperr.NotFound("webinar not found"))
		return
	}
	wb, err := h.Webinars.GetByID(r.Context(), id)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.OK(w, wb)
}

type createRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Speaker     string    `json:"speaker"`
	JoinURL     string    `json:"join_url"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Capacity    int       `json:"capacity"`
}

// ServeCreate handles POST /api/webinars.
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
	if req.Title == "" {
		missing = append(missing, "title")
	}
	if req.ScheduledAt.IsZero() {
		missing = append(missing, "scheduled_at")
	}
	if len(missing) > 0 {
		respond.Err(w, h.Log, apperr.Validation(missing...))
		return
	}
	if req.Capacity < 0 {
		respond.Err(w, h.Log, apperr.Validationf("capacity must not be negative"))
		return
	}

	wb, err := h.Webinars.Create(r.Context(), models.Webinar{
		Title:       req.Title,
		Description: htmlsanitize.Sanitize(req.Description),
		Speaker:     htmlsanitize.StripTags(req.Speaker),
		JoinURL:     req.JoinURL,
		ScheduledAt: req.ScheduledAt,
		Capacity:    req.Capacity,
	})
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	h.Effects.Dispatch(r.Context(), r, admin.ID, []effects.Effect{
		effects.Audit(audit.EventWebinarCreated, wb.ID, map[string]string{"title": wb.Title}),
	})
	respond.Created(w, wb)
}

// ServeUpdate handles PUT /api/webinars/:id.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request, p router.Params) {
	id, err := primitive.ObjectIDFromHex(p["id"])
	if err != nil {
		respond.Err(w, h.Log, apperr.NotFound("webinar not found"))
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

	var upd webinarstore.Update
	if v, present, err := patch.String("title"); err != nil {
		respond.Err(w, h.Log, err)
		return
	} else if present {
		if v == "" {
			respond.Err(w, h.Log, apperr.Validationf("title must not be empty"))
			return
		}
		upd.Title = &v
	}
	if v, present, err := patch.String("description"); err != nil {
		respond.Err(w, h.Log, err)
		return
	} else if present {
		v = htmlsanitize.Sanitize(v)
		upd.Description = &v
	}
	if v, present, err := patch.String("speaker"); err != nil {
		respond.Err(w, h.Log, err)
		return
	} else if present {
		v = htmlsanitize.StripTags(v)
		upd.Speaker = &v
	}
	if v, present, err := patch.String("join_url"); err != nil {
		respond.Err(w, h.Log, err)
		return
	} else if present {
		upd.JoinURL = &v
	}
	if v, present, err := patch.Time("scheduled_at"); err != nil {
		respond.Err(w, h.Log, err)
		return
	} else if present {
		if v == nil {
			respond.Err(w, h.Log, apperr.Validationf("scheduled_at must not be null"))
			return
		}
		upd.ScheduledAt = v
	}
	if v, present, err := patch.Int("capacity"); err != nil {
		respond.Err(w, h.Log, err)
		return
	} else if present {
		if v < 0 {
			respond.Err(w, h.Log, apperr.Validationf("capacity must not be negative"))
			return
		}
		upd.Capacity = &v
	}
	if v, present, err := patch.String("status"); err != nil {
		respond.Err(w, h.Log, err)
		return
	} else if present {
		if !inputval.IsValidEventStatus(v) {
			respond.Err(w, h.Log, apperr.Validationf("unknown status %q", v))
			return
		}
		upd.Status = &v
	}

	wb, err := h.Webinars.Update(r.Context(), id, upd)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	h.Effects.Dispatch(r.Context(), r, admin.ID, []effects.Effect{
		effects.Audit(audit.EventWebinarUpdated, wb.ID, nil),
	})
	respond.OK(w, wb)
}

// ServeCancel handles DELETE /api/webinars/:id.
func (h *Handler) ServeCancel(w http.ResponseWriter, r *http.Request, p router.Params) {
	id, err := primitive.ObjectIDFromHex(p["id"])
	if err != nil {
		respond.Err(w, h.Log, apperr.NotFound("webinar not found"))
		return
	}
	admin, ok := auth.CurrentAdmin(r)
	if !ok {
		respond.Err(w, h.Log, apperr.Auth("not authenticated"))
		return
	}

	wb, err := h.Webinars.Cancel(r.Context(), id)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	h.Effects.Dispatch(r.Context(), r, admin.ID, []effects.Effect{
		effects.Audit(audit.EventWebinarCancelled, wb.ID, map[string]string{"title": wb.Title}),
	})
	respond.OK(w, wb)
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

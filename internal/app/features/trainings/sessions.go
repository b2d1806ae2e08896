// internal/app/features/trainings/sessions.go
package trainings

import (
	"net/http"
	"time"

	"github.com/dalemusser/memberhub/internal/app/api/body"
	"github.com/dalemusser/memberhub/internal/app/api/listquery"
	"github.com/dalemusser/memberhub/internal/app/api/respond"
	"github.com/dalemusser/memberhub/internal/app/api/router"
	"github.com/dalemusser/memberhub/internal/app/store/audit"
	trainingstore "github.com/dalemusser/memberhub/internal/app/store/trainings"
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

type sessionListItem struct {
	models.Training
	Registrations int64 `json:"registrations"`
}

// ServeList handles GET /api/trainings. Recognized filters beyond the
// standard options: status, includeCancelled, from, to (starts_at window).
// Each item carries its registration count; the count lookup is enrichment
// only, so its failure degrades the counts to zero instead of failing the
// list.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request, _ router.Params) {
	q := listquery.Parse(r, trainingstore.ListSpec())
	q.Eq("status", query.Get(r, "status"))
	q.Range("starts_at", parseTime(query.Get(r, "from")), parseTime(query.Get(r, "to")))
	includeCancelled := query.Get(r, "includeCancelled") == "true"

	sessions, total, err := h.Trainings.List(r.Context(), &q, includeCancelled)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	ids := make([]primitive.ObjectID, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}
	counts, err := h.RegStore.CountForEvents(r.Context(), models.EventKindTraining, ids)
	if err != nil {
		h.Log.Warn("registration count enrichment failed", zap.Error(err))
		counts = nil
	}

	items := make([]sessionListItem, len(sessions))
	for i, s := range sessions {
		items[i] = sessionListItem{Training: s, Registrations: counts[s.ID]}
	}
	respond.List(w, items, q.PageOf(total))
}

// ServeGet handles GET /api/trainings/:id.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request, p router.Params) {
	id, err := primitive.ObjectIDFromHex(p["id"])
	if err != nil {
		respond.Err(w, h.Log, apperr.NotFound("training session not found"))
		return
	}
	t, err := h.Trainings.GetByID(r.Context(), id)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.OK(w, t)
}

type createRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	Trainer     string     `json:"trainer"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Capacity    int        `json:"capacity"`
}

// ServeCreate handles POST /api/trainings.
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
	if req.StartsAt.IsZero() {
		missing = append(missing, "starts_at")
	}
	if len(missing) > 0 {
		respond.Err(w, h.Log, apperr.Validation(missing...))
		return
	}
	if req.Capacity < 0 {
		respond.Err(w, h.Log, apperr.Validationf("capacity must not be negative"))
		return
	}
	if req.EndsAt != nil && req.EndsAt.Before(req.StartsAt) {
		respond.Err(w, h.Log, apperr.Validationf("ends_at must not precede starts_at"))
		return
	}

	t, err := h.Trainings.Create(r.Context(), models.Training{
		Title:       req.Title,
		Description: htmlsanitize.Sanitize(req.Description),
		Location:    htmlsanitize.StripTags(req.Location),
		Trainer:     htmlsanitize.StripTags(req.Trainer),
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Capacity:    req.Capacity,
	})
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	h.Effects.Dispatch(r.Context(), r, admin.ID, []effects.Effect{
		effects.Audit(audit.EventTrainingCreated, t.ID, map[string]string{"title": t.Title}),
	})
	respond.Created(w, t)
}

// ServeUpdate handles PUT /api/trainings/:id.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request, p router.Params) {
	id, err := primitive.ObjectIDFromHex(p["id"])
	if err != nil {
		respond.Err(w, h.Log, apperr.NotFound("training session not found"))
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

	var upd trainingstore.Update
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
	if v, present, err := patch.String("location"); err != nil {
		respond.Err(w, h.Log, err)
		return
	} else if present {
		v = htmlsanitize.StripTags(v)
		upd.Location = &v
	}
	if v, present, err := patch.String("trainer"); err != nil {
		respond.Err(w, h.Log, err)
		return
	} else if present {
		v = htmlsanitize.StripTags(v)
		upd.Trainer = &v
	}
	if v, present, err := patch.Time("starts_at"); err != nil {
		respond.Err(w, h.Log, err)
		return
	} else if present {
		if v == nil {
			respond.Err(w, h.Log, apperr.Validationf("starts_at must not be null"))
			return
		}
		upd.StartsAt = v
	}
	if v, present, err := patch.Time("ends_at"); err != nil {
		respond.Err(w, h.Log, err)
		return
	} else if present {
		upd.EndsAt = &v
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

	t, err := h.Trainings.Update(r.Context(), id, upd)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	h.Effects.Dispatch(r.Context(), r, admin.ID, []effects.Effect{
		effects.Audit(audit.EventTrainingUpdated, t.ID, nil),
	})
	respond.OK(w, t)
}

// ServeCancel handles DELETE /api/trainings/:id. Cancelling keeps the
// session and its registrations addressable.
func (h *Handler) ServeCancel(w http.ResponseWriter, r *http.Request, p router.Params) {
	id, err := primitive.ObjectIDFromHex(p["id"])
	if err != nil {
		respond.Err(w, h.Log, apperr.NotFound("training session not found"))
		return
	}
	admin, ok := auth.CurrentAdmin(r)
	if !ok {
		respond.Err(w, h.Log, apperr.Auth("not authenticated"))
		return
	}

	t, err := h.Trainings.Cancel(r.Context(), id)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	h.Effects.Dispatch(r.Context(), r, admin.ID, []effects.Effect{
		effects.Audit(audit.EventTrainingCancelled, t.ID, map[string]string{"title": t.Title}),
	})
	respond.OK(w, t)
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

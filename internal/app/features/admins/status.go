// internal/app/features/admins/status.go
package admins

import (
	"net/http"
	"time"

	"github.com/dalemusser/memberhub/internal/app/api/body"
	"github.com/dalemusser/memberhub/internal/app/api/respond"
	"github.com/dalemusser/memberhub/internal/app/api/router"
	"github.com/dalemusser/memberhub/internal/app/store/audit"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/app/system/effects"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeDisable handles POST /api/admins/:id/disable. Disabling yourself is
// refused; it would lock the actor out mid-session.
func (h *Handler) ServeDisable(w http.ResponseWriter, r *http.Request, p router.Params) {
	h.setStatus(w, r, p, models.AdminDisabled, audit.EventAdminDisabled)
}

// ServeEnable handles POST /api/admins/:id/enable. Enabling also clears any
// leftover suspension expiry.
func (h *Handler) ServeEnable(w http.ResponseWriter, r *http.Request, p router.Params) {
	h.setStatus(w, r, p, models.AdminActive, audit.EventAdminEnabled)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request, p router.Params, status, eventType string) {
	id, err := primitive.ObjectIDFromHex(p["id"])
	if err != nil {
		respond.Err(w, h.Log, apperr.NotFound("admin account not found"))
		return
	}
	actor, ok := auth.CurrentAdmin(r)
	if !ok {
		respond.Err(w, h.Log, apperr.Auth("not authenticated"))
		return
	}
	if status == models.AdminDisabled && id == actor.ID {
		respond.Err(w, h.Log, apperr.Conflict("cannot disable your own account"))
		return
	}

	a, err := h.Admins.SetStatus(r.Context(), id, status)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	if status == models.AdminActive && a.SuspendedUntil != nil {
		a, err = h.Admins.ClearSuspension(r.Context(), id)
		if err != nil {
			respond.Err(w, h.Log, err)
			return
		}
	}

	h.Effects.Dispatch(r.Context(), r, actor.ID, []effects.Effect{
		effects.Audit(eventType, a.ID, nil),
	})
	respond.OK(w, a)
}

type suspendRequest struct {
	Until time.Time `json:"until"`
}

// ServeSuspend handles POST /api/admins/:id/suspend with {"until": ...}.
// The account rejects logins until the expiry passes, then reactivates
// lazily on its next login attempt.
func (h *Handler) ServeSuspend(w http.ResponseWriter, r *http.Request, p router.Params) {
	id, err := primitive.ObjectIDFromHex(p["id"])
	if err != nil {
		respond.Err(w, h.Log, apperr.NotFound("admin account not found"))
		return
	}
	actor, ok := auth.CurrentAdmin(r)
	if !ok {
		respond.Err(w, h.Log, apperr.Auth("not authenticated"))
		return
	}
	if id == actor.ID {
		respond.Err(w, h.Log, apperr.Conflict("cannot suspend your own account"))
		return
	}
	var req suspendRequest
	if err := body.Decode(r, &req); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	if req.Until.IsZero() {
		respond.Err(w, h.Log, apperr.Validation("until"))
		return
	}
	if !req.Until.After(time.Now()) {
		respond.Err(w, h.Log, apperr.Validationf("until must be in the future"))
		return
	}

	a, err := h.Admins.Suspend(r.Context(), id, req.Until)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	h.Effects.Dispatch(r.Context(), r, actor.ID, []effects.Effect{
		effects.Audit(audit.EventAdminSuspended, a.ID, map[string]string{
			"until": req.Until.UTC().Format(time.RFC3339),
		}),
	})
	respond.OK(w, a)
}

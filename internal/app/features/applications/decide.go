// internal/app/features/applications/decide.go
package applications

import (
	"net/http"

	"github.com/dalemusser/memberhub/internal/app/api/body"
	"github.com/dalemusser/memberhub/internal/app/api/respond"
	"github.com/dalemusser/memberhub/internal/app/api/router"
	"github.com/dalemusser/memberhub/internal/app/store/audit"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/app/system/effects"
	"github.com/dalemusser/memberhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/memberhub/internal/app/system/webhook"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeApprove handles POST /api/applications/:id/approve.
func (h *Handler) ServeApprove(w http.ResponseWriter, r *http.Request, p router.Params) {
	h.decide(w, r, p, models.MemberApproved)
}

// ServeReject handles POST /api/applications/:id/reject. An optional body
// {"reason": "..."} travels into the rejection email and the audit entry.
func (h *Handler) ServeReject(w http.ResponseWriter, r *http.Request, p router.Params) {
	h.decide(w, r, p, models.MemberRejected)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, p router.Params, status string) {
	id, err := primitive.ObjectIDFromHex(p["id"])
	if err != nil {
		respond.Err(w, h.Log, apperr.NotFound("member not found"))
		return
	}
	admin, ok := auth.CurrentAdmin(r)
	if !ok {
		respond.Err(w, h.Log, apperr.Auth("not authenticated"))
		return
	}

	var reason string
	if status == models.MemberRejected {
		patch, err := body.DecodePatch(r)
		if err != nil {
			respond.Err(w, h.Log, err)
			return
		}
		if v, present, err := patch.String("reason"); err != nil {
			respond.Err(w, h.Log, err)
			return
		} else if present {
			reason = htmlsanitize.StripTags(v)
		}
	}

	m, err := h.Members.Decide(r.Context(), id, status, admin.ID)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	eventType := audit.EventApplicationApproved
	notifType := webhook.TypeApplicationApproved
	fields := map[string]string{"first_name": m.FirstName}
	if status == models.MemberRejected {
		eventType = audit.EventApplicationRejected
		notifType = webhook.TypeApplicationRejected
		if reason != "" {
			fields["reason"] = reason
		}
	}

	var details map[string]string
	if reason != "" {
		details = map[string]string{"reason": reason}
	}
	h.Effects.Dispatch(r.Context(), r, admin.ID, []effects.Effect{
		effects.Audit(eventType, m.ID, details),
		effects.Email(webhook.Notification{
			Type:      notifType,
			Recipient: m.Email,
			Fields:    fields,
		}),
	})

	respond.OK(w, m)
}

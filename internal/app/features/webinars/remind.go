// internal/app/features/webinars/remind.go
package webinars

import (
	"net/http"

	"github.com/dalemusser/memberhub/internal/app/api/respond"
	"github.com/dalemusser/memberhub/internal/app/api/router"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/app/system/webhook"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// remindConcurrency bounds the parallel relay calls for one reminder burst.
const remindConcurrency = 8

type remindResponse struct {
	Recipients int `json:"recipients"`
}

// ServeRemind handles POST /api/webinars/:id/remind: one reminder email per
// confirmed registration. Deliveries run concurrently and are each
// best-effort, so the response reports how many were attempted, not how many
// the relay accepted.
func (h *Handler) ServeRemind(w http.ResponseWriter, r *http.Request, p router.Params) {
	id, err := primitive.ObjectIDFromHex(p["id"])
	if err != nil {
		respond.Err(w, h.Log, apperr.NotFound("webinar not found"))
		return
	}
	if _, ok := auth.CurrentAdmin(r); !ok {
		respond.Err(w, h.Log, apperr.Auth("not authenticated"))
		return
	}

	wb, err := h.Webinars.GetByID(r.Context(), id)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	if wb.Status == models.WebinarCancelled {
		respond.Err(w, h.Log, apperr.Conflict("webinar is cancelled"))
		return
	}

	regs, err := h.RegStore.ConfirmedEmails(r.Context(), models.EventKindWebinar, id)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(remindConcurrency)
	for _, reg := range regs {
		n := webhook.Notification{
			Type:      webhook.TypeWebinarReminder,
			Recipient: reg.Email,
			Fields: map[string]string{
				"full_name":    reg.FullName,
				"event_title":  wb.Title,
				"scheduled_at": wb.ScheduledAt.UTC().Format("2006-01-02 15:04 UTC"),
				"join_url":     wb.JoinURL,
			},
		}
		g.Go(func() error {
			h.Webhook.Send(ctx, n)
			return nil
		})
	}
	_ = g.Wait()

	h.Log.Info("webinar reminders dispatched",
		zap.String("webinar_id", id.Hex()),
		zap.Int("recipients", len(regs)),
	)
	respond.OK(w, remindResponse{Recipients: len(regs)})
}

// internal/app/features/webinars/handler.go

// Package webinars serves webinars, their registrations, and the reminder
// fan-out to confirmed attendees.
package webinars

import (
	"context"

	"github.com/dalemusser/memberhub/internal/app/features/eventreg"
	registrationstore "github.com/dalemusser/memberhub/internal/app/store/registrations"
	webinarstore "github.com/dalemusser/memberhub/internal/app/store/webinars"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/effects"
	"github.com/dalemusser/memberhub/internal/app/system/webhook"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Webinars *webinarstore.Store
	Regs     *eventreg.Sub
	RegStore *registrationstore.Store
	Webhook  *webhook.Client
	Effects  *effects.Dispatcher
	Log      *zap.Logger
}

// NewHandler constructs the webinars feature handler, including its
// registration subresource.
func NewHandler(webinars *webinarstore.Store, regs *registrationstore.Store, wh *webhook.Client, disp *effects.Dispatcher, logger *zap.Logger) *Handler {
	h := &Handler{
		Webinars: webinars,
		RegStore: regs,
		Webhook:  wh,
		Effects:  disp,
		Log:      logger,
	}
	h.Regs = &eventreg.Sub{
		Kind:    models.EventKindWebinar,
		Regs:    regs,
		Effects: disp,
		Log:     logger,
		Lookup:  h.lookupEvent,
	}
	return h
}

func (h *Handler) lookupEvent(ctx context.Context, eventID primitive.ObjectID) (eventreg.EventInfo, error) {
	wb, err := h.Webinars.GetByID(ctx, eventID)
	if err != nil {
		return eventreg.EventInfo{}, err
	}
	if wb.Status == models.WebinarCancelled {
		return eventreg.EventInfo{}, apperr.Conflict("webinar is cancelled")
	}
	return eventreg.EventInfo{Title: wb.Title, Capacity: wb.Capacity}, nil
}

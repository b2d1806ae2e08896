// internal/app/features/trainings/handler.go

// Package trainings serves training sessions and their registrations.
package trainings

import (
	"context"

	"github.com/dalemusser/memberhub/internal/app/features/eventreg"
	registrationstore "github.com/dalemusser/memberhub/internal/app/store/registrations"
	trainingstore "github.com/dalemusser/memberhub/internal/app/store/trainings"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/effects"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Trainings *trainingstore.Store
	Regs      *eventreg.Sub
	RegStore  *registrationstore.Store
	Effects   *effects.Dispatcher
	Log       *zap.Logger
}

// NewHandler constructs the trainings feature handler, including its
// registration subresource.
func NewHandler(trainings *trainingstore.Store, regs *registrationstore.Store, disp *effects.Dispatcher, logger *zap.Logger) *Handler {
	h := &Handler{
		Trainings: trainings,
		RegStore:  regs,
		Effects:   disp,
		Log:       logger,
	}
	h.Regs = &eventreg.Sub{
		Kind:    models.EventKindTraining,
		Regs:    regs,
		Effects: disp,
		Log:     logger,
		Lookup:  h.lookupEvent,
	}
	return h
}

func (h *Handler) lookupEvent(ctx context.Context, eventID primitive.ObjectID) (eventreg.EventInfo, error) {
	t, err := h.Trainings.GetByID(ctx, eventID)
	if err != nil {
		return eventreg.EventInfo{}, err
	}
	if t.Status == models.TrainingCancelled {
		return eventreg.EventInfo{}, apperr.Conflict("training session is cancelled")
	}
	return eventreg.EventInfo{Title: t.Title, Capacity: t.Capacity}, nil
}

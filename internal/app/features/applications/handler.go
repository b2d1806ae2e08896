// internal/app/features/applications/handler.go

// Package applications serves membership applications: public submission,
// review listing, approval and rejection, and the applicant photo upload.
package applications

import (
	memberstore "github.com/dalemusser/memberhub/internal/app/store/members"
	"github.com/dalemusser/memberhub/internal/app/system/effects"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

type Handler struct {
	Members *memberstore.Store
	Files   storage.Store
	Effects *effects.Dispatcher
	Log     *zap.Logger
}

// NewHandler constructs the applications feature handler.
func NewHandler(members *memberstore.Store, files storage.Store, disp *effects.Dispatcher, logger *zap.Logger) *Handler {
	return &Handler{
		Members: members,
		Files:   files,
		Effects: disp,
		Log:     logger,
	}
}

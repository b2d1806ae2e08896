// internal/app/features/recruitment/handler.go

// Package recruitment serves the prospect pipeline: leads, stage moves, and
// the invitation email.
package recruitment

import (
	prospectstore "github.com/dalemusser/memberhub/internal/app/store/prospects"
	"github.com/dalemusser/memberhub/internal/app/system/effects"
	"go.uber.org/zap"
)

type Handler struct {
	Prospects *prospectstore.Store
	Effects   *effects.Dispatcher
	Log       *zap.Logger
}

// NewHandler constructs the recruitment feature handler.
func NewHandler(prospects *prospectstore.Store, disp *effects.Dispatcher, logger *zap.Logger) *Handler {
	return &Handler{
		Prospects: prospects,
		Effects:   disp,
		Log:       logger,
	}
}

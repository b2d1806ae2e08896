// internal/app/features/admins/handler.go

// Package admins serves administrator account management: creation, role and
// permission changes, disable/enable, and timed suspensions. The whole
// feature sits behind the manage-admins permission.
package admins

import (
	adminstore "github.com/dalemusser/memberhub/internal/app/store/admins"
	"github.com/dalemusser/memberhub/internal/app/system/effects"
	"go.uber.org/zap"
)

// MinPasswordLength is the floor for new admin passwords.
const MinPasswordLength = 10

type Handler struct {
	Admins  *adminstore.Store
	Effects *effects.Dispatcher
	Log     *zap.Logger
}

// NewHandler constructs the admins feature handler.
func NewHandler(admins *adminstore.Store, disp *effects.Dispatcher, logger *zap.Logger) *Handler {
	return &Handler{
		Admins:  admins,
		Effects: disp,
		Log:     logger,
	}
}

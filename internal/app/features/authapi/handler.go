// internal/app/features/authapi/handler.go

// Package authapi serves the login endpoint. Login is the only route in the
// portal that accepts credentials instead of a bearer token, so it carries
// its own rate limiting and the most detailed audit trail.
package authapi

import (
	adminstore "github.com/dalemusser/memberhub/internal/app/store/admins"
	"github.com/dalemusser/memberhub/internal/app/system/auditlog"
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

type Handler struct {
	Admins  *adminstore.Store
	Tokens  *auth.Tokens
	Limiter *ratelimit.LoginLimiter
	Audit   *auditlog.Logger
	Log     *zap.Logger
}

// NewHandler constructs the login handler.
func NewHandler(admins *adminstore.Store, tokens *auth.Tokens, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Admins:  admins,
		Tokens:  tokens,
		Limiter: limiter,
		Audit:   audit,
		Log:     logger,
	}
}

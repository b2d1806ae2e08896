// internal/app/features/auditlog/handler.go

// Package auditlog serves the read-only audit trail. Entries are written by
// the effects dispatcher and the login path; this feature only lists them.
package auditlog

import (
	"github.com/dalemusser/memberhub/internal/app/store/audit"
	"go.uber.org/zap"
)

type Handler struct {
	Audit *audit.Store
	Log   *zap.Logger
}

// NewHandler constructs the audit log feature handler.
func NewHandler(store *audit.Store, logger *zap.Logger) *Handler {
	return &Handler{Audit: store, Log: logger}
}

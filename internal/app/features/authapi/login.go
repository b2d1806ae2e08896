// internal/app/features/authapi/login.go
package authapi

import (
	"net/http"
	"time"

	"github.com/dalemusser/memberhub/internal/app/api/body"
	"github.com/dalemusser/memberhub/internal/app/api/respond"
	"github.com/dalemusser/memberhub/internal/app/api/router"
	"github.com/dalemusser/memberhub/internal/app/store/audit"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/domain/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	Admin     *models.AdminUser `json:"admin"`
}

// ServeLogin handles POST /api/auth/login.
//
// Every failure path answers with the same generic message so the response
// never confirms whether an email exists; the audit trail records the real
// reason. A suspension whose expiry has passed is lifted here, on the login
// path, rather than by a background job.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request, _ router.Params) {
	var req loginRequest
	if err := body.Decode(r, &req); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	var missing []string
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		respond.Err(w, h.Log, apperr.Validation(missing...))
		return
	}

	ctx := r.Context()

	if allowed, reason := h.Limiter.Check(r, req.Email); !allowed {
		h.Audit.LoginFailed(ctx, r, audit.EventLoginFailedRateLimit, reason, req.Email, nil)
		respond.Err(w, h.Log, apperr.Auth(reason))
		return
	}

	admin, err := h.Admins.GetByEmail(ctx, req.Email)
	if err != nil {
		if apperr.IsKind(err, apperr.KindAuth) {
			h.Audit.LoginFailed(ctx, r, audit.EventLoginFailedUserNotFound, "no account for email", req.Email, nil)
			respond.Err(w, h.Log, apperr.Auth("invalid credentials"))
			return
		}
		respond.Err(w, h.Log, err)
		return
	}

	if err := auth.CheckPassword(admin.PasswordHash, req.Password); err != nil {
		h.Audit.LoginFailed(ctx, r, audit.EventLoginFailedWrongPassword, "wrong password", req.Email, &admin.ID)
		respond.Err(w, h.Log, apperr.Auth("invalid credentials"))
		return
	}

	now := time.Now()
	if err := auth.AccountUsable(admin, now); err != nil {
		eventType := audit.EventLoginFailedUserDisabled
		if apperr.IsKind(err, apperr.KindSuspended) {
			eventType = audit.EventLoginFailedSuspended
		}
		h.Audit.LoginFailed(ctx, r, eventType, apperr.From(err).Message, req.Email, &admin.ID)
		respond.Err(w, h.Log, err)
		return
	}

	// The account passed the usability check, so any remaining suspension
	// expiry is stale. Clear it and record the lift.
	if admin.SuspendedUntil != nil {
		cleared, err := h.Admins.ClearSuspension(ctx, admin.ID)
		if err != nil {
			respond.Err(w, h.Log, err)
			return
		}
		admin = cleared
		h.Audit.SuspensionLifted(ctx, r, admin.ID)
	}

	token, exp, err := h.Tokens.Issue(admin)
	if err != nil {
		respond.Err(w, h.Log, apperr.Server(err))
		return
	}

	if err := h.Admins.RecordLogin(ctx, admin.ID, now); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	admin.LastLoginAt = &now

	h.Limiter.ResetEmail(req.Email)
	h.Audit.LoginSuccess(ctx, r, admin.ID, admin.Email)

	respond.OK(w, loginResponse{Token: token, ExpiresAt: exp, Admin: admin})
}

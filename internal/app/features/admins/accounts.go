// internal/app/features/admins/accounts.go
package admins

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/memberhub/internal/app/api/body"
	"github.com/dalemusser/memberhub/internal/app/api/listquery"
	"github.com/dalemusser/memberhub/internal/app/api/respond"
	"github.com/dalemusser/memberhub/internal/app/api/router"
	adminstore "github.com/dalemusser/memberhub/internal/app/store/admins"
	"github.com/dalemusser/memberhub/internal/app/store/audit"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/app/system/effects"
	"github.com/dalemusser/memberhub/internal/app/system/inputval"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeList handles GET /api/admins. Recognized filters beyond the standard
// options: role, status.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request, _ router.Params) {
	q := listquery.Parse(r, adminstore.ListSpec())
	q.Eq("role", query.Get(r, "role"))
	q.Eq("status", query.Get(r, "status"))

	admins, total, err := h.Admins.List(r.Context(), &q)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.List(w, admins, q.PageOf(total))
}

// ServeGet handles GET /api/admins/:id.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request, p router.Params) {
	id, err := primitive.ObjectIDFromHex(p["id"])
	if err != nil {
		respond.Err(w, h.Log, apperr.NotFound("admin account not found"))
		return
	}
	a, err := h.Admins.GetByID(r.Context(), id)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.OK(w, a)
}

type createRequest struct {
	FullName    string             `json:"full_name"`
	Email       string             `json:"email"`
	Password    string             `json:"password"`
	Role        string             `json:"role"`
	Permissions models.Permissions `json:"permissions"`
}

// ServeCreate handles POST /api/admins.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request, _ router.Params) {
	actor, ok := auth.CurrentAdmin(r)
	if !ok {
		respond.Err(w, h.Log, apperr.Auth("not authenticated"))
		return
	}
	var req createRequest
	if err := body.Decode(r, &req); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	var missing []string
	if req.FullName == "" {
		missing = append(missing, "full_name")
	}
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if req.Role == "" {
		missing = append(missing, "role")
	}
	if len(missing) > 0 {
		respond.Err(w, h.Log, apperr.Validation(missing...))
		return
	}
	if !inputval.IsValidEmail(req.Email) {
		respond.Err(w, h.Log, apperr.Validationf("invalid email address"))
		return
	}
	if !inputval.IsValidRole(req.Role) {
		respond.Err(w, h.Log, apperr.Validationf("unknown role %q", req.Role))
		return
	}
	if len(req.Password) < MinPasswordLength {
		respond.Err(w, h.Log, apperr.Validationf("password must be at least %d characters", MinPasswordLength))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respond.Err(w, h.Log, apperr.Server(err))
		return
	}

	a, err := h.Admins.Create(r.Context(), models.AdminUser{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Permissions:  req.Permissions,
	})
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	h.Effects.Dispatch(r.Context(), r, actor.ID, []effects.Effect{
		effects.Audit(audit.EventAdminCreated, a.ID, map[string]string{
			"email": a.Email, "role": a.Role,
		}),
	})
	respond.Created(w, a)
}

// ServeUpdate handles PUT /api/admins/:id. Password changes go through
// their own route; status changes go through disable/enable/suspend.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request, p router.Params) {
	id, err := primitive.ObjectIDFromHex(p["id"])
	if err != nil {
		respond.Err(w, h.Log, apperr.NotFound("admin account not found"))
		return
	}
	actor, ok := auth.CurrentAdmin(r)
	if !ok {
		respond.Err(w, h.Log, apperr.Auth("not authenticated"))
		return
	}
	patch, err := body.DecodePatch(r)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	var upd adminstore.Update
	if v, present, err := patch.String("full_name"); err != nil {
		respond.Err(w, h.Log, err)
		return
	} else if present {
		if v == "" {
			respond.Err(w, h.Log, apperr.Validationf("full_name must not be empty"))
			return
		}
		upd.FullName = &v
	}
	if v, present, err := patch.String("email"); err != nil {
		respond.Err(w, h.Log, err)
		return
	} else if present {
		if !inputval.IsValidEmail(v) {
			respond.Err(w, h.Log, apperr.Validationf("invalid email address"))
			return
		}
		upd.Email = &v
	}
	if v, present, err := patch.String("role"); err != nil {
		respond.Err(w, h.Log, err)
		return
	} else if present {
		if !inputval.IsValidRole(v) {
			respond.Err(w, h.Log, apperr.Validationf("unknown role %q", v))
			return
		}
		// No one may edit away their own superadmin role; that is how a
		// portal loses its last superadmin.
		if id == actor.ID && actor.Role == models.RoleSuperAdmin && v != models.RoleSuperAdmin {
			respond.Err(w, h.Log, apperr.Conflict("cannot change your own superadmin role"))
			return
		}
		upd.Role = &v
	}
	if raw, ok := patch["permissions"]; ok {
		var perms models.Permissions
		if err := permsFromRaw(raw, &perms); err != nil {
			respond.Err(w, h.Log, err)
			return
		}
		upd.Permissions = &perms
	}

	a, err := h.Admins.Update(r.Context(), id, upd)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	h.Effects.Dispatch(r.Context(), r, actor.ID, []effects.Effect{
		effects.Audit(audit.EventAdminUpdated, a.ID, nil),
	})
	respond.OK(w, a)
}

// permsFromRaw decodes a permissions object; an explicit null clears every
// grant.
func permsFromRaw(raw json.RawMessage, dst *models.Permissions) error {
	if string(bytes.TrimSpace(raw)) == "null" {
		*dst = models.Permissions{}
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperr.Validationf("field \"permissions\" must be an object")
	}
	return nil
}

type passwordRequest struct {
	Password string `json:"password"`
}

// ServePassword handles POST /api/admins/:id/password.
func (h *Handler) ServePassword(w http.ResponseWriter, r *http.Request, p router.Params) {
	id, err := primitive.ObjectIDFromHex(p["id"])
	if err != nil {
		respond.Err(w, h.Log, apperr.NotFound("admin account not found"))
		return
	}
	actor, ok := auth.CurrentAdmin(r)
	if !ok {
		respond.Err(w, h.Log, apperr.Auth("not authenticated"))
		return
	}
	var req passwordRequest
	if err := body.Decode(r, &req); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	if len(req.Password) < MinPasswordLength {
		respond.Err(w, h.Log, apperr.Validationf("password must be at least %d characters", MinPasswordLength))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respond.Err(w, h.Log, apperr.Server(err))
		return
	}
	a, err := h.Admins.SetPasswordHash(r.Context(), id, hash)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	h.Effects.Dispatch(r.Context(), r, actor.ID, []effects.Effect{
		effects.Audit(audit.EventAdminUpdated, a.ID, map[string]string{"changed": "password"}),
	})
	respond.Message(w, "password updated")
}

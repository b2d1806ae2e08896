// internal/app/features/auditlog/routes.go
package auditlog

import (
	"net/http"

	"github.com/dalemusser/memberhub/internal/app/api/router"
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/domain/models"
)

// Routes returns the audit log handler mounted at base (typically
// "/api/audit"). Reading the trail is restricted to superadmins and admins.
func Routes(h *Handler, mw *auth.Middleware, base string) http.Handler {
	table := router.New(base, h.Log,
		router.Route{Methods: "GET", Pattern: "", Handler: h.ServeList},
	)
	gate := mw.RequireRole(models.RoleSuperAdmin, models.RoleAdmin)
	return mw.RequireAuth(gate(table))
}

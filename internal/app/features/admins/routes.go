// internal/app/features/admins/routes.go
package admins

import (
	"net/http"

	"github.com/dalemusser/memberhub/internal/app/api/router"
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/domain/models"
)

// Routes returns the admins handler mounted at base (typically
// "/api/admins"). Everything requires both a token and the manage-admins
// permission.
func Routes(h *Handler, mw *auth.Middleware, base string) http.Handler {
	table := router.New(base, h.Log,
		router.Route{Methods: "GET", Pattern: "", Handler: h.ServeList},
		router.Route{Methods: "POST", Pattern: "", Handler: h.ServeCreate},
		router.Route{Methods: "GET", Pattern: ":id", Handler: h.ServeGet},
		router.Route{Methods: "PUT", Pattern: ":id", Handler: h.ServeUpdate},
		router.Route{Methods: "POST", Pattern: ":id/password", Handler: h.ServePassword},
		router.Route{Methods: "POST", Pattern: ":id/disable", Handler: h.ServeDisable},
		router.Route{Methods: "POST", Pattern: ":id/enable", Handler: h.ServeEnable},
		router.Route{Methods: "POST", Pattern: ":id/suspend", Handler: h.ServeSuspend},
	)
	gate := mw.RequirePermission((*models.AdminUser).CanManageAdmins, "admins")
	return mw.RequireAuth(gate(table))
}

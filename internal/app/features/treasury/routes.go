// internal/app/features/treasury/routes.go
package treasury

import (
	"net/http"

	"github.com/dalemusser/memberhub/internal/app/api/router"
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/domain/models"
)

// Routes returns the treasury handler mounted at base (typically
// "/api/treasury"). Everything requires both a token and the
// manage-treasury permission.
func Routes(h *Handler, mw *auth.Middleware, base string) http.Handler {
	table := router.New(base, h.Log,
		router.Route{Methods: "GET", Pattern: "stats", Handler: h.ServeStats},
		router.Route{Methods: "GET", Pattern: "payments", Handler: h.ServeList},
		router.Route{Methods: "POST", Pattern: "payments", Handler: h.ServeCreate},
		router.Route{Methods: "GET", Pattern: "payments/:id", Handler: h.ServeGet},
		router.Route{Methods: "PUT", Pattern: "payments/:id", Handler: h.ServeUpdate},
		router.Route{Methods: "DELETE", Pattern: "payments/:id", Handler: h.ServeDelete},
	)
	gate := mw.RequirePermission((*models.AdminUser).CanManageTreasury, "treasury")
	return mw.RequireAuth(gate(table))
}

// internal/app/features/dashboard/routes.go
package dashboard

import (
	"net/http"

	"github.com/dalemusser/memberhub/internal/app/api/router"
	"github.com/dalemusser/memberhub/internal/app/system/auth"
)

// Routes returns the dashboard handler mounted at base (typically
// "/api/dashboard"). Any authenticated admin may read the counters.
func Routes(h *Handler, mw *auth.Middleware, base string) http.Handler {
	table := router.New(base, h.Log,
		router.Route{Methods: "GET", Pattern: "stats", Handler: h.ServeStats},
	)
	return mw.RequireAuth(table)
}

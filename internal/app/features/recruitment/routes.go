// internal/app/features/recruitment/routes.go
package recruitment

import (
	"net/http"

	"github.com/dalemusser/memberhub/internal/app/api/router"
	"github.com/dalemusser/memberhub/internal/app/system/auth"
)

// Routes returns the recruitment handler mounted at base (typically
// "/api/recruitment"). Everything requires a token.
func Routes(h *Handler, mw *auth.Middleware, base string) http.Handler {
	return mw.RequireAuth(router.New(base, h.Log,
		router.Route{Methods: "GET", Pattern: "prospects", Handler: h.ServeList},
		router.Route{Methods: "POST", Pattern: "prospects", Handler: h.ServeCreate},
		router.Route{Methods: "GET", Pattern: "prospects/:id", Handler: h.ServeGet},
		router.Route{Methods: "PUT", Pattern: "prospects/:id", Handler: h.ServeUpdate},
		router.Route{Methods: "DELETE", Pattern: "prospects/:id", Handler: h.ServeArchive},
		router.Route{Methods: "POST", Pattern: "prospects/:id/invite", Handler: h.ServeInvite},
	))
}

// internal/app/features/applications/routes.go
package applications

import (
	"net/http"

	"github.com/dalemusser/memberhub/internal/app/api/router"
	"github.com/dalemusser/memberhub/internal/app/system/auth"
)

// Routes returns the applications handler mounted at base (typically
// "/api/applications"). POST to the collection root is the public
// application form; everything else requires a token.
func Routes(h *Handler, mw *auth.Middleware, base string) http.Handler {
	public := router.New(base, h.Log,
		router.Route{Methods: "POST", Pattern: "", Handler: h.ServeCreate},
	)
	protected := mw.RequireAuth(router.New(base, h.Log,
		router.Route{Methods: "GET", Pattern: "", Handler: h.ServeList},
		router.Route{Methods: "GET", Pattern: ":id", Handler: h.ServeGet},
		router.Route{Methods: "PUT", Pattern: ":id", Handler: h.ServeUpdate},
		router.Route{Methods: "DELETE", Pattern: ":id", Handler: h.ServeArchive},
		router.Route{Methods: "POST", Pattern: ":id/approve", Handler: h.ServeApprove},
		router.Route{Methods: "POST", Pattern: ":id/reject", Handler: h.ServeReject},
		router.Route{Methods: "POST", Pattern: ":id/photo", Handler: h.ServePhoto},
	))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && public.Relative(r.URL.Path) == "" {
			public.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	})
}

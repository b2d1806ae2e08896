// internal/app/features/webinars/routes.go
package webinars

import (
	"net/http"
	"strings"

	"github.com/dalemusser/memberhub/internal/app/api/router"
	"github.com/dalemusser/memberhub/internal/app/system/auth"
)

// Routes returns the webinars handler mounted at base (typically
// "/api/webinars"). Registration signup is the public route; everything
// else requires a token.
func Routes(h *Handler, mw *auth.Middleware, base string) http.Handler {
	public := router.New(base, h.Log,
		router.Route{Methods: "POST", Pattern: ":id/registrations", Handler: h.Regs.ServeCreate},
	)

	protectedRoutes := []router.Route{
		{Methods: "GET", Pattern: "", Handler: h.ServeList},
		{Methods: "POST", Pattern: "", Handler: h.ServeCreate},
		{Methods: "GET", Pattern: ":id", Handler: h.ServeGet},
		{Methods: "PUT", Pattern: ":id", Handler: h.ServeUpdate},
		{Methods: "DELETE", Pattern: ":id", Handler: h.ServeCancel},
		{Methods: "POST", Pattern: ":id/remind", Handler: h.ServeRemind},
	}
	protectedRoutes = append(protectedRoutes, h.Regs.Routes()...)
	protected := mw.RequireAuth(router.New(base, h.Log, protectedRoutes...))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && isSignup(public, r) {
			public.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	})
}

// isSignup reports whether the request targets the public signup route
// (":id/registrations" exactly).
func isSignup(t *router.Table, r *http.Request) bool {
	parts := strings.Split(t.Relative(r.URL.Path), "/")
	return len(parts) == 2 && parts[1] == "registrations"
}

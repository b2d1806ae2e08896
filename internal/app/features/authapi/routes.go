// internal/app/features/authapi/routes.go
package authapi

import (
	"net/http"

	"github.com/dalemusser/memberhub/internal/app/api/router"
)

// Routes returns the route table for the auth endpoints, mounted at base
// (typically "/api/auth" from bootstrap). Login is unauthenticated.
func Routes(h *Handler, base string) http.Handler {
	return router.New(base, h.Log,
		router.Route{Methods: "POST", Pattern: "login", Handler: h.ServeLogin},
	)
}

// internal/app/system/cors/cors.go

// Package cors applies the portal's fixed permissive CORS header set to
// every response and short-circuits OPTIONS preflights before auth or
// routing run.
package cors

import "net/http"

// Headers is the fixed set carried by every response, preflight included.
var Headers = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
	"Access-Control-Allow-Methods": "GET, POST, PUT, DELETE, OPTIONS",
}

// Middleware sets the headers and answers preflights with 204 and an empty
// body. When origin is non-empty it replaces the wildcard allow-origin.
func Middleware(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for k, v := range Headers {
				w.Header().Set(k, v)
			}
			if origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

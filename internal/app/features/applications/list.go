// internal/app/features/applications/list.go
package applications

import (
	"net/http"

	"github.com/dalemusser/memberhub/internal/app/api/listquery"
	"github.com/dalemusser/memberhub/internal/app/api/respond"
	"github.com/dalemusser/memberhub/internal/app/api/router"
	memberstore "github.com/dalemusser/memberhub/internal/app/store/members"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeList handles GET /api/applications.
//
// Recognized filters beyond the standard list options: status and
// includeArchived.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request, _ router.Params) {
	q := listquery.Parse(r, memberstore.ListSpec())
	q.Eq("status", query.Get(r, "status"))
	includeArchived := query.Get(r, "includeArchived") == "true"

	members, total, err := h.Members.List(r.Context(), &q, includeArchived)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.List(w, members, q.PageOf(total))
}

// ServeGet handles GET /api/applications/:id.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request, p router.Params) {
	id, err := primitive.ObjectIDFromHex(p["id"])
	if err != nil {
		respond.Err(w, h.Log, apperr.NotFound("member not found"))
		return
	}
	m, err := h.Members.GetByID(r.Context(), id)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.OK(w, m)
}

// internal/app/features/applications/photo.go
package applications

import (
	"net/http"

	"github.com/dalemusser/memberhub/internal/app/api/body"
	"github.com/dalemusser/memberhub/internal/app/api/respond"
	"github.com/dalemusser/memberhub/internal/app/api/router"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/upload"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type photoRequest struct {
	Photo string `json:"photo"` // data URL
}

// ServePhoto handles POST /api/applications/:id/photo. The photo replaces
// any previous one because uploads are stored at a path keyed by the record
// id.
func (h *Handler) ServePhoto(w http.ResponseWriter, r *http.Request, p router.Params) {
	id, err := primitive.ObjectIDFromHex(p["id"])
	if err != nil {
		respond.Err(w, h.Log, apperr.NotFound("member not found"))
		return
	}
	var req photoRequest
	if err := body.Decode(r, &req); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	if req.Photo == "" {
		respond.Err(w, h.Log, apperr.Validation("photo"))
		return
	}

	d, err := upload.ParseDataURL(req.Photo)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	// The record must exist before anything is written to storage.
	if _, err := h.Members.GetByID(r.Context(), id); err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	url, err := upload.Put(r.Context(), h.Files, "applications", id.Hex(), d)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	m, err := h.Members.SetPhotoURL(r.Context(), id, url)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.OK(w, m)
}

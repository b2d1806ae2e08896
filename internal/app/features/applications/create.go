// internal/app/features/applications/create.go
package applications

import (
	"net/http"

	"github.com/dalemusser/memberhub/internal/app/api/body"
	"github.com/dalemusser/memberhub/internal/app/api/respond"
	"github.com/dalemusser/memberhub/internal/app/api/router"
	"github.com/dalemusser/memberhub/internal/app/store/audit"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/effects"
	"github.com/dalemusser/memberhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/memberhub/internal/app/system/inputval"
	"github.com/dalemusser/memberhub/internal/app/system/upload"
	"github.com/dalemusser/memberhub/internal/app/system/webhook"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	City       string `json:"city"`
	Profession string `json:"profession"`
	Motivation string `json:"motivation"`
	Photo      string `json:"photo"` // optional data URL
}

// ServeCreate handles POST /api/applications. This is the portal's one
// public write: the application form posts here without a token.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request, _ router.Params) {
	var req createRequest
	if err := body.Decode(r, &req); err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	var missing []string
	if req.FirstName == "" {
		missing = append(missing, "first_name")
	}
	if req.LastName == "" {
		missing = append(missing, "last_name")
	}
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		respond.Err(w, h.Log, apperr.Validation(missing...))
		return
	}
	if !inputval.IsValidEmail(req.Email) {
		respond.Err(w, h.Log, apperr.Validationf("invalid email address"))
		return
	}

	// Photo errors are caught before the insert so a bad upload does not
	// leave a half-created application behind.
	var photo upload.DataURL
	if req.Photo != "" {
		var err error
		photo, err = upload.ParseDataURL(req.Photo)
		if err != nil {
			respond.Err(w, h.Log, err)
			return
		}
	}

	m, err := h.Members.Create(r.Context(), models.Member{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      htmlsanitize.StripTags(req.Phone),
		City:       htmlsanitize.StripTags(req.City),
		Profession: htmlsanitize.StripTags(req.Profession),
		Motivation: htmlsanitize.StripTags(req.Motivation),
	})
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	if req.Photo != "" {
		url, err := upload.Put(r.Context(), h.Files, "applications", m.ID.Hex(), photo)
		if err != nil {
			respond.Err(w, h.Log, err)
			return
		}
		updated, err := h.Members.SetPhotoURL(r.Context(), m.ID, url)
		if err != nil {
			respond.Err(w, h.Log, err)
			return
		}
		m = *updated
	}

	// Public submissions have no authenticated actor; the audit entry
	// carries a zero actor id.
	h.Effects.Dispatch(r.Context(), r, primitive.ObjectID{}, []effects.Effect{
		effects.Audit(audit.EventApplicationCreated, m.ID, map[string]string{"email": m.Email}),
		effects.Email(webhook.Notification{
			Type:      webhook.TypeApplicationReceived,
			Recipient: m.Email,
			Fields:    map[string]string{"first_name": m.FirstName},
		}),
	})

	respond.Created(w, m)
}

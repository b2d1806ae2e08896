// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/memberhub/internal/app/api/listquery"
	"github.com/dalemusser/memberhub/internal/app/api/respond"
	"github.com/dalemusser/memberhub/internal/app/api/router"
	"github.com/dalemusser/memberhub/internal/app/store/audit"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultLimit = 50

// ServeList handles GET /api/audit. Recognized filters: category,
// eventType, actorId, targetId, from, to, plus page and limit. The trail is
// immutable, so this is the feature's only route.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request, _ router.Params) {
	page := 1
	if n, err := strconv.Atoi(query.Get(r, "page")); err == nil && n >= 1 {
		page = n
	}
	limit := defaultLimit
	if n, err := strconv.Atoi(query.Get(r, "limit")); err == nil && n >= 1 {
		limit = n
	}
	if limit > listquery.MaxLimit {
		limit = listquery.MaxLimit
	}

	filter := audit.QueryFilter{
		Category:  query.Get(r, "category"),
		EventType: query.Get(r, "eventType"),
		ActorID:   parseID(query.Get(r, "actorId")),
		TargetID:  parseID(query.Get(r, "targetId")),
		StartTime: parseTime(query.Get(r, "from")),
		EndTime:   parseTime(query.Get(r, "to")),
		Limit:     int64(limit),
		Offset:    int64(page-1) * int64(limit),
	}

	total, err := h.Audit.CountByFilter(r.Context(), filter)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	events, err := h.Audit.Query(r.Context(), filter)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	pages := int(total / int64(limit))
	if total%int64(limit) != 0 {
		pages++
	}
	respond.List(w, events, respond.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: pages,
	})
}

func parseID(raw string) *primitive.ObjectID {
	oid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil
	}
	return &oid
}

func parseTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &t
}

// internal/app/api/listquery/listquery.go

// Package listquery turns the recognized query-string options of a list
// endpoint into a Mongo filter, sort, and page window. Every list endpoint
// composes the same stages in the same order: filters, then sort, then the
// page slice, with the total always counted over the filtered set before the
// window is applied. Unrecognized query parameters are ignored, never an
// error.
package listquery

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/memberhub/internal/app/api/respond"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaxLimit is the hard cap on page size, regardless of what the caller
// requests.
const MaxLimit = 500

// DefaultLimit is used when an endpoint does not declare its own.
const DefaultLimit = 20

// Spec declares what a list endpoint recognizes: its default page size, the
// text fields its search option matches, and the allow-list of explicit sort
// fields. Sort docs are declared in ascending orientation; the requested
// direction flips every key, which keeps composite human-name sorts (last
// name with first name as secondary, and vice versa) consistent.
type Spec struct {
	DefaultLimit int
	SearchFields []string
	SortFields   map[string]bson.D
	DefaultSort  bson.D // applied when no explicit sort is requested
}

// Request is the normalized representation of one list request. It is
// constructed per incoming request and discarded after the response is
// built.
type Request struct {
	Page   int
	Limit  int
	Search string
	SortBy string
	Desc   bool

	// IDs, when non-empty, switches the request into inclusion-list mode:
	// the result set is exactly the records whose id is in the list.
	IDs []primitive.ObjectID

	spec    Spec
	filters bson.M
}

// Parse reads the standard options (page, limit, search, sortBy, sortOrder,
// ids) from the request. Endpoint-specific filters are added afterwards via
// Eq/In/Range.
func Parse(r *http.Request, spec Spec) Request {
	if spec.DefaultLimit <= 0 {
		spec.DefaultLimit = DefaultLimit
	}
	if len(spec.DefaultSort) == 0 {
		spec.DefaultSort = bson.D{{Key: "created_at", Value: -1}}
	}

	q := Request{
		Page:    1,
		Limit:   spec.DefaultLimit,
		Search:  strings.TrimSpace(query.Get(r, "search")),
		SortBy:  strings.TrimSpace(query.Get(r, "sortBy")),
		spec:    spec,
		filters: bson.M{},
	}

	if n, err := strconv.Atoi(query.Get(r, "page")); err == nil && n >= 1 {
		q.Page = n
	}
	if n, err := strconv.Atoi(query.Get(r, "limit")); err == nil && n >= 1 {
		q.Limit = n
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if strings.EqualFold(query.Get(r, "sortOrder"), "desc") {
		q.Desc = true
	}

	for _, raw := range strings.Split(query.Get(r, "ids"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if oid, err := primitive.ObjectIDFromHex(raw); err == nil {
			q.IDs = append(q.IDs, oid)
		}
	}

	return q
}

// IDMode reports whether the request is in inclusion-list mode. In this mode
// search, endpoint filters, and pagination are all skipped and the full
// matching set is returned. The mode exists for bulk selection (e.g.
// picking recipients for a mailing), where a page window would be wrong.
func (q *Request) IDMode() bool { return len(q.IDs) > 0 }

// Eq adds an equality filter when value is non-empty.
func (q *Request) Eq(field, value string) {
	if value != "" {
		q.filters[field] = value
	}
}

// EqID adds an equality filter on an ObjectID field when raw parses.
func (q *Request) EqID(field, raw string) {
	if oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw)); err == nil {
		q.filters[field] = oid
	}
}

// EqBool adds an equality filter on a boolean field when raw is "true" or
// "false".
func (q *Request) EqBool(field, raw string) {
	if b, err := strconv.ParseBool(raw); err == nil && raw != "" {
		q.filters[field] = b
	}
}

// In adds an inclusion filter over the non-empty values.
func (q *Request) In(field string, values []string) {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	if len(kept) > 0 {
		q.filters[field] = bson.M{"$in": kept}
	}
}

// Range adds a closed date range filter; either bound may be nil.
func (q *Request) Range(field string, from, to *time.Time) {
	cond := bson.M{}
	if from != nil {
		cond["$gte"] = *from
	}
	if to != nil {
		cond["$lte"] = *to
	}
	if len(cond) > 0 {
		q.filters[field] = cond
	}
}

// Filter composes the final Mongo filter. scope holds structural constraints
// that always apply (soft-delete exclusion, parent-record scoping); the
// endpoint filters and the search clause are layered on top, unless the
// request is in inclusion-list mode, in which case they are skipped and only
// scope plus the id list applies.
func (q *Request) Filter(scope bson.M) bson.M {
	out := bson.M{}
	for k, v := range scope {
		out[k] = v
	}

	if q.IDMode() {
		out["_id"] = bson.M{"$in": q.IDs}
		return out
	}

	for k, v := range q.filters {
		out[k] = v
	}

	if q.Search != "" && len(q.spec.SearchFields) > 0 {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		or := make([]bson.M, 0, len(q.spec.SearchFields))
		for _, f := range q.spec.SearchFields {
			or = append(or, bson.M{f: pattern})
		}
		out["$or"] = or
	}

	return out
}

// Sort resolves the effective sort document. Explicit sorts must be in the
// endpoint's allow-list; anything else falls back to the default. Sort is
// applied before pagination, always, so results are stable across pages.
func (q *Request) Sort() bson.D {
	doc, ok := q.spec.SortFields[q.SortBy]
	if q.SortBy == "" || !ok {
		return q.spec.DefaultSort
	}
	dir := 1
	if q.Desc {
		dir = -1
	}
	out := make(bson.D, len(doc))
	for i, e := range doc {
		out[i] = bson.E{Key: e.Key, Value: dir * e.Value.(int)}
	}
	return out
}

// Find builds the find options for the page: sort, then
// offset=(page-1)*limit, then limit rows. In inclusion-list mode no window
// is applied.
func (q *Request) Find() *options.FindOptions {
	find := options.Find().SetSort(q.Sort())
	if !q.IDMode() {
		find.SetSkip(int64(q.Page-1) * int64(q.Limit)).SetLimit(int64(q.Limit))
	}
	return find
}

// Window returns the page's skip and limit for endpoints that page through
// an aggregation pipeline instead of a plain find.
func (q *Request) Window() (skip, limit int64) {
	return int64(q.Page-1) * int64(q.Limit), int64(q.Limit)
}

// PageOf builds the pagination block from the filtered-set total.
func (q *Request) PageOf(total int64) respond.Pagination {
	if q.IDMode() {
		return respond.Pagination{Page: 1, Limit: int(total), Total: total, TotalPages: 1}
	}
	pages := int(total / int64(q.Limit))
	if total%int64(q.Limit) != 0 {
		pages++
	}
	return respond.Pagination{Page: q.Page, Limit: q.Limit, Total: total, TotalPages: pages}
}

// internal/app/api/router/router.go

// Package router implements the declarative per-feature route table used by
// every API feature. A feature declares an ordered list of
// {methods, pattern, handler} routes relative to its mount point; a single
// shared matcher strips the base prefix, normalizes slashes, and walks the
// table in declaration order. The first route whose method set and pattern
// both match wins. An unmatched path+method combination yields a JSON 404
// that echoes the attempted method and path for diagnostics.
//
// Patterns are slash-separated segments. A literal segment must match
// exactly; a segment starting with ':' captures one identifier. Identifier
// capture is deliberately loose (any non-empty run of hex digits and
// dashes) because rejecting a plausible identifier here would wrongly 404
// a valid request; stores decide whether the id actually exists.
package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dalemusser/memberhub/internal/app/api/respond"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"go.uber.org/zap"
)

// Params holds the identifier captures of a matched route, keyed by the
// parameter name in the pattern (":id" → "id").
type Params map[string]string

// Handler is a route endpoint. Captured parameters arrive already validated
// as identifier-shaped strings.
type Handler func(w http.ResponseWriter, r *http.Request, p Params)

// Route pairs a method set and a pattern with its handler. Methods is a
// comma-free space-free list like "GET" or "PUT"; a single route serving
// multiple verbs declares them separated by '|'.
type Route struct {
	Methods string
	Pattern string
	Handler Handler
}

// Table is an ordered route table bound to a base mount path. It is built
// once at startup and read-only afterwards, so it is safe for concurrent use.
type Table struct {
	base   string
	routes []compiled
	log    *zap.Logger
}

type compiled struct {
	methods  map[string]struct{}
	segments []segment
	handler  Handler
}

type segment struct {
	literal string
	param   string // non-empty for ":name" segments
}

// New compiles the given routes into a table mounted at base. Route order is
// significant: the first match in declaration order wins, so literal routes
// that could be shadowed by a parameter capture must be declared first.
func New(base string, logger *zap.Logger, routes ...Route) *Table {
	t := &Table{base: normalize(base), log: logger}
	for _, rt := range routes {
		c := compiled{
			methods: make(map[string]struct{}),
			handler: rt.Handler,
		}
		for _, m := range strings.Split(rt.Methods, "|") {
			c.methods[strings.ToUpper(strings.TrimSpace(m))] = struct{}{}
		}
		p := normalize(rt.Pattern)
		if p != "" {
			for _, seg := range strings.Split(p, "/") {
				if strings.HasPrefix(seg, ":") {
					c.segments = append(c.segments, segment{param: seg[1:]})
				} else {
					c.segments = append(c.segments, segment{literal: seg})
				}
			}
		}
		t.routes = append(t.routes, c)
	}
	return t
}

// ServeHTTP dispatches the request against the table.
func (t *Table) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rel := t.Relative(r.URL.Path)
	for _, c := range t.routes {
		if _, ok := c.methods[r.Method]; !ok {
			continue
		}
		p, ok := match(c.segments, rel)
		if !ok {
			continue
		}
		c.handler(w, r, p)
		return
	}
	respond.Err(w, t.log, apperr.NotFound(fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path)))
}

// Relative strips the table's base prefix from path and normalizes the
// remainder: no leading or trailing slash, internal slash runs collapsed.
func (t *Table) Relative(path string) string {
	p := normalize(path)
	if t.base != "" {
		if p == t.base {
			return ""
		}
		p = strings.TrimPrefix(p, t.base+"/")
	}
	return p
}

func normalize(p string) string {
	parts := strings.Split(p, "/")
	kept := parts[:0]
	for _, s := range parts {
		if s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, "/")
}

func match(segs []segment, rel string) (Params, bool) {
	var parts []string
	if rel != "" {
		parts = strings.Split(rel, "/")
	}
	if len(parts) != len(segs) {
		return nil, false
	}
	var p Params
	for i, seg := range segs {
		if seg.param != "" {
			if !identLike(parts[i]) {
				return nil, false
			}
			if p == nil {
				p = make(Params, 2)
			}
			p[seg.param] = parts[i]
			continue
		}
		if seg.literal != parts[i] {
			return nil, false
		}
	}
	return p, true
}

// identLike accepts hex-with-dashes identifiers (Mongo object ids, UUIDs).
// No checksum or length validation: a false negative would 404 a valid
// request, which is worse than passing a garbage id to the store.
func identLike(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		case c == '-':
		default:
			return false
		}
	}
	return true
}

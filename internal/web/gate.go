// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// LoginGate decides which routes require a logged-in user.
type LoginGate struct {
	patterns []glob.Glob
}

// NewLoginGate compiles path patterns. '*' does not cross '/'; use '**'
// for that.
func NewLoginGate(patterns []string) (*LoginGate, error) {
	g := &LoginGate{patterns: make([]glob.Glob, 0, len(patterns))}
	for _, p := range patterns {
		compiled, err := glob.Compile(p, '/')
		if err != nil {
			return nil, oops.Code("WEB_INVALID_PATTERN").With("pattern", p).Wrap(err)
		}
		g.patterns = append(g.patterns, compiled)
	}
	return g, nil
}

// Protects reports whether the route pattern or path needs a login.
func (g *LoginGate) Protects(path string) bool {
	for _, p := range g.patterns {
		if p.Match(path) {
			return true
		}
	}
	return false
}

// requireLogin redirects anonymous visitors away from protected routes. It
// must be installed on a group so it runs after chi has matched the route.
func (s *Server) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.gate.Protects(routePattern(r)) && currentUser(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// routePattern returns the pattern chi matched for r, or "" outside a router.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

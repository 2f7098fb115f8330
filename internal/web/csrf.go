// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

package web

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"net/http"
)

const (
	csrfCookieName = "csrf_token"
	csrfFormField  = "csrf_token"
	csrfHeader     = "X-CSRF-Token"

	maxFormBytes = 1 << 20
)

// csrf issues a double-submit token cookie and rejects POSTs whose form
// field or header does not match it.
func (s *Server) csrf(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if cookie, err := r.Cookie(csrfCookieName); err == nil && cookie.Value != "" {
			token = cookie.Value
		} else {
			token = rand.Text()
			http.SetCookie(w, &http.Cookie{
				Name:     csrfCookieName,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Secure:   s.secure,
			})
			// a freshly issued token cannot validate this request
			if r.Method == http.MethodPost {
				s.renderForbidden(w, r)
				return
			}
		}

		r = r.WithContext(context.WithValue(r.Context(), csrfKey, token))

		if r.Method == http.MethodPost {
			r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
			if !validCSRF(r, token) {
				s.renderForbidden(w, r)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// validCSRF checks the header first, then the form field (which includes
// the query string, used by GET links that change state).
func validCSRF(r *http.Request, want string) bool {
	got := r.Header.Get(csrfHeader)
	if got == "" {
		got = r.FormValue(csrfFormField)
	}
	return got != "" && want != "" && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func csrfToken(ctx context.Context) string {
	token, _ := ctx.Value(csrfKey).(string)
	return token
}

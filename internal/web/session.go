// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

package web

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/samber/oops"
	"golang.org/x/crypto/hkdf"

	"github.com/solhub/solhub/internal/auth"
)

const (
	sessionName = "solhub_session"

	valueUser    = "user"
	valueExpires = "expires"
)

type ctxKey int

const (
	userKey ctxKey = iota
	csrfKey
)

// sessionManager keeps the logged-in user in an encrypted cookie. A session
// lives for maxAge after login; a request arriving within refresh of the
// deadline pushes the deadline to now+refresh.
type sessionManager struct {
	store   *sessions.CookieStore
	maxAge  time.Duration
	refresh time.Duration
	now     func() time.Time
}

func newSessionManager(secret string, maxAge, refresh time.Duration, secure bool, now func() time.Time) (*sessionManager, error) {
	if secret == "" {
		return nil, oops.Code("WEB_INVALID_SERVER").Errorf("session secret is required")
	}
	if maxAge <= 0 {
		return nil, oops.Code("WEB_INVALID_SERVER").Errorf("session max age must be positive")
	}

	hashKey, err := deriveKey(secret, "solhub session hash", 64)
	if err != nil {
		return nil, err
	}
	blockKey, err := deriveKey(secret, "solhub session block", 32)
	if err != nil {
		return nil, err
	}

	store := sessions.NewCookieStore(hashKey, blockKey)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(int(maxAge.Seconds()))

	return &sessionManager{store: store, maxAge: maxAge, refresh: refresh, now: now}, nil
}

func deriveKey(secret, info string, n int) ([]byte, error) {
	key := make([]byte, n)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key); err != nil {
		return nil, oops.Code("WEB_INVALID_SERVER").Wrapf(err, "derive session key")
	}
	return key, nil
}

// load puts the session user, if any, into the request context.
func (m *sessionManager) load(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := m.store.Get(r, sessionName)
			if err != nil {
				// undecodable cookie: treat as logged out
				logger.DebugContext(r.Context(), "discarding session cookie", "error", err)
			}

			user, expires, ok := readSession(sess)
			now := m.now()
			switch {
			case !ok:
			case !now.Before(expires):
				ok = false
				m.clear(sess)
				if err := sess.Save(r, w); err != nil {
					logger.WarnContext(r.Context(), "failed to clear expired session", "error", err)
				}
			case expires.Sub(now) < m.refresh:
				sess.Values[valueExpires] = now.Add(m.refresh).Unix()
				if err := sess.Save(r, w); err != nil {
					logger.WarnContext(r.Context(), "failed to refresh session", "error", err)
				}
			}

			ctx := r.Context()
			if ok {
				ctx = context.WithValue(ctx, userKey, user)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func readSession(sess *sessions.Session) (*auth.User, time.Time, bool) {
	if sess == nil {
		return nil, time.Time{}, false
	}
	raw, ok := sess.Values[valueUser].(string)
	if !ok {
		return nil, time.Time{}, false
	}
	exp, ok := sess.Values[valueExpires].(int64)
	if !ok {
		return nil, time.Time{}, false
	}
	var user auth.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, time.Time{}, false
	}
	return &user, time.Unix(exp, 0), true
}

// login replaces whatever the session held with user.
func (m *sessionManager) login(w http.ResponseWriter, r *http.Request, user *auth.User) error {
	sess, _ := m.store.Get(r, sessionName) //nolint:errcheck // a bad cookie is overwritten below
	data, err := json.Marshal(user)
	if err != nil {
		return oops.Code("WEB_SESSION_FAILED").Wrap(err)
	}

	sess.Values = map[any]any{
		valueUser:    string(data),
		valueExpires: m.now().Add(m.maxAge).Unix(),
	}
	sess.Options.MaxAge = int(m.maxAge.Seconds())
	if err := sess.Save(r, w); err != nil {
		return oops.Code("WEB_SESSION_FAILED").Wrap(err)
	}
	return nil
}

func (m *sessionManager) logout(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, sessionName) //nolint:errcheck // cleared regardless
	m.clear(sess)
	if err := sess.Save(r, w); err != nil {
		return oops.Code("WEB_SESSION_FAILED").Wrap(err)
	}
	return nil
}

func (m *sessionManager) clear(sess *sessions.Session) {
	sess.Values = map[any]any{}
	sess.Options.MaxAge = -1
}

// currentUser returns the logged-in user, or nil.
func currentUser(ctx context.Context) *auth.User {
	user, _ := ctx.Value(userKey).(*auth.User)
	return user
}

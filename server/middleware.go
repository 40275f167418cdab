package server

import (
	"context"
	"net/http"
	"net/url"

	"musicbox/logger"
	"musicbox/model"
)

const sessionCookieName = "musicbox_session"

type contextKey int

const userContextKey contextKey = iota

// currentUser resolves the session cookie to a user record, or nil when the
// cookie is absent, invalid, revoked or points at a vanished user.
func (h *Handler) currentUser(r *http.Request) *model.User {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	claims, err := h.tokens.Parse(cookie.Value)
	if err != nil {
		return nil
	}

	userID, live, err := h.sessions.Resolve(r.Context(), claims.ID)
	if err != nil {
		logger.Error("Failed to resolve session", logger.ErrorField(err))
		return nil
	}
	if !live || userID != claims.UserID {
		return nil
	}

	user, err := h.users.GetUserByID(userID)
	if err != nil {
		logger.Error("Failed to load session user", logger.Int64("userId", userID), logger.ErrorField(err))
		return nil
	}
	return user
}

// RequireSession gates a handler behind a valid session. Unauthenticated
// requests are redirected to the login page with the originally requested
// path preserved for the post-login redirect.
func (h *Handler) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := h.currentUser(r)
		if user == nil {
			setFlash(w, r, "warning", "You need to log in to continue.")
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.Path), http.StatusSeeOther)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// userFromContext returns the user attached by RequireSession, or nil.
func userFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey).(*model.User)
	return user
}

// safeNext keeps the post-login redirect on this site. Anything that isn't a
// local absolute path falls back to the index page.
func safeNext(next string) string {
	if next == "" || next[0] != '/' || (len(next) > 1 && next[1] == '/') {
		return "/"
	}
	return next
}

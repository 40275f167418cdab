package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"musicbox/core/auth"
	"musicbox/logger"
	"musicbox/model"
	"musicbox/repository"
)

// RegisterHandler serves the registration form and creates accounts.
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.renderer.render(w, "register", h.newPageData(w, r))
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	password := r.FormValue("password")
	if username == "" || email == "" || password == "" {
		setFlash(w, r, "error", "Please fill in all fields.")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
	}
	if _, err := h.users.CreateUser(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			logger.Warn("Registration conflict",
				logger.String("username", username), logger.String("email", email))
			setFlash(w, r, "error", "Username or email already exists.")
			http.Redirect(w, r, "/register", http.StatusSeeOther)
			return
		}
		logger.Error("Failed to create user", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	logger.Info("User registered", logger.String("username", username))
	setFlash(w, r, "success", "Registration successful! Please log in.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// LoginHandler serves the login form and establishes sessions. A failed
// lookup and a failed password check produce the same response so the two
// are indistinguishable from outside.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"))

	if r.Method == http.MethodGet {
		data := h.newPageData(w, r)
		if next != "/" {
			data.Next = next
		}
		h.renderer.render(w, "login", data)
		return
	}

	ident := strings.TrimSpace(r.FormValue("ident"))
	password := r.FormValue("password")

	var (
		user *model.User
		err  error
	)
	if strings.Contains(ident, "@") {
		user, err = h.users.GetUserByEmail(strings.ToLower(ident))
	} else {
		user, err = h.users.GetUserByUsername(ident)
	}
	if err != nil {
		logger.Error("Failed to look up user", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if user == nil || !auth.CheckPasswordHash(password, user.PasswordHash) {
		logger.Warn("Login failed", logger.String("ident", ident))
		setFlash(w, r, "error", "Invalid username/email or password.")
		http.Redirect(w, r, loginPath(next), http.StatusSeeOther)
		return
	}

	token, sessionID, err := h.tokens.Generate(user.ID, user.Username)
	if err != nil {
		logger.Error("Failed to generate session token", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if err := h.sessions.Create(r.Context(), sessionID, user.ID, h.tokens.TTL()); err != nil {
		logger.Error("Failed to store session", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokens.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	logger.Info("User logged in", logger.String("username", user.Username))
	setFlash(w, r, "success", "Logged in successfully.")
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// LogoutHandler revokes the session and clears the cookie. Revoking an
// already-revoked session is a no-op, so repeated logouts are harmless.
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if claims, err := h.tokens.Parse(cookie.Value); err == nil {
			if err := h.sessions.Revoke(r.Context(), claims.ID); err != nil {
				logger.Error("Failed to revoke session", logger.ErrorField(err))
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	setFlash(w, r, "success", "You have been logged out.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func loginPath(next string) string {
	if next == "" || next == "/" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(next)
}

package authapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"portfolio-backend/internal/admins"
	"portfolio-backend/internal/auth"
	"portfolio-backend/internal/httpx"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/transport"
	"portfolio-backend/internal/validation"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Username  string     `json:"username"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

type PasswordChangeRequest struct {
	Username        string `json:"username" validate:"required"`
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

type Handler struct {
	service      *admins.Service
	manager      *auth.Manager
	val          *validation.Validator
	log          *slog.Logger
	cookieSecure bool
}

func NewHandler(service *admins.Service, manager *auth.Manager, val *validation.Validator, log *slog.Logger, cookieSecure bool) *Handler {
	return &Handler{
		service:      service,
		manager:      manager,
		val:          val,
		log:          log,
		cookieSecure: cookieSecure,
	}
}

// Login verifies the admin credential, stamps lastLogin, and issues the
// session cookie pair.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req LoginRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("auth login: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("auth login: validation error")
		transport.WriteError(w, http.StatusBadRequest, "missing required fields", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	admin, err := h.service.Verify(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, admins.ErrInvalidCredentials):
			log.Warn("auth login: invalid credentials", slog.String("username", req.Username))
			transport.WriteError(w, http.StatusUnauthorized, "invalid credentials", nil)
		case errors.Is(err, admins.ErrNotConfigured):
			log.Warn("auth login: not configured")
			transport.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
		default:
			log.Error("auth login: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}

	if h.manager != nil {
		if err := h.issueSession(w, admin.Username); err != nil {
			log.Error("auth login: token error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "token error", nil)
			return
		}
	}

	log.Info("auth login: ok", slog.String("username", admin.Username))
	transport.WriteJSON(w, http.StatusOK, LoginResponse{
		Username:  admin.Username,
		LastLogin: admin.LastLogin,
	})
}

// ChangePassword swaps the stored hash after verifying the current password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req PasswordChangeRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("auth password: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("auth password: validation error")
		transport.WriteError(w, http.StatusBadRequest, "missing required fields", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	if err := h.service.ChangePassword(ctx, req.Username, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, admins.ErrInvalidCredentials) {
			log.Warn("auth password: invalid credentials", slog.String("username", req.Username))
			transport.WriteError(w, http.StatusUnauthorized, "invalid credentials", nil)
			return
		}
		log.Error("auth password: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("auth password: ok", slog.String("username", req.Username))
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Refresh rotates the cookie pair from a valid refresh cookie.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	if h.manager == nil {
		log.Warn("auth refresh: not configured")
		transport.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
		return
	}

	cookie, err := r.Cookie(auth.RefreshCookieName)
	if err != nil || cookie.Value == "" {
		log.Warn("auth refresh: missing refresh token")
		transport.WriteError(w, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}

	claims, err := h.manager.Parse(cookie.Value)
	if err != nil || claims.Role != "admin" || claims.TokenType != auth.TokenTypeRefresh {
		log.Warn("auth refresh: invalid refresh token")
		transport.WriteError(w, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}

	if err := h.issueSession(w, claims.Username); err != nil {
		log.Error("auth refresh: token error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "token error", nil)
		return
	}

	log.Info("auth refresh: ok", slog.String("username", claims.Username))
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Signout clears both auth cookies.
func (h *Handler) Signout(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	h.clearSession(w)
	log.Info("auth signout: ok")
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) issueSession(w http.ResponseWriter, username string) error {
	access, err := h.manager.NewAccessToken(username, "admin")
	if err != nil {
		return err
	}
	refresh, err := h.manager.NewRefreshToken(username, "admin")
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessCookieName,
		Value:    access,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.manager.AccessTTL.Seconds()),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     auth.RefreshCookieName,
		Value:    refresh,
		Path:     "/api/auth",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.manager.RefreshTTL.Seconds()),
	})
	return nil
}

func (h *Handler) clearSession(w http.ResponseWriter) {
	expire := time.Now().Add(-1 * time.Hour)
	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  expire,
		MaxAge:   -1,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     auth.RefreshCookieName,
		Value:    "",
		Path:     "/api/auth",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  expire,
		MaxAge:   -1,
	})
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return h.log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}

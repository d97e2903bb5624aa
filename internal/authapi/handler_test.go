package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"portfolio-backend/internal/admins"
	"portfolio-backend/internal/auth"
	"portfolio-backend/internal/validation"

	"go.mongodb.org/mongo-driver/mongo"
)

type memoryAdmins struct {
	byUsername map[string]admins.Admin
}

func newMemoryAdmins() *memoryAdmins {
	return &memoryAdmins{byUsername: make(map[string]admins.Admin)}
}

func (m *memoryAdmins) GetByUsername(ctx context.Context, username string) (admins.Admin, error) {
	if item, ok := m.byUsername[username]; ok {
		return item, nil
	}
	return admins.Admin{}, mongo.ErrNoDocuments
}

func (m *memoryAdmins) Create(ctx context.Context, item admins.Admin) error {
	m.byUsername[item.Username] = item
	return nil
}

func (m *memoryAdmins) Count(ctx context.Context) (int64, error) {
	return int64(len(m.byUsername)), nil
}

func (m *memoryAdmins) SetPassword(ctx context.Context, username, passwordHash string, now time.Time) error {
	item, ok := m.byUsername[username]
	if !ok {
		return mongo.ErrNoDocuments
	}
	item.PasswordHash = passwordHash
	m.byUsername[username] = item
	return nil
}

func (m *memoryAdmins) StampLastLogin(ctx context.Context, username string, now time.Time) error {
	item, ok := m.byUsername[username]
	if !ok {
		return nil
	}
	item.LastLogin = &now
	m.byUsername[username] = item
	return nil
}

func testManager() *auth.Manager {
	return &auth.Manager{
		Secret:     []byte("test-secret"),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
		Issuer:     "portfolio-backend",
	}
}

func newTestHandler(t *testing.T, bootstrapUser, bootstrapPassword string, manager *auth.Manager) *Handler {
	t.Helper()
	service := admins.NewService(newMemoryAdmins(), time.UTC, bootstrapUser, bootstrapPassword)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(service, manager, validation.New(), log, false)
}

func postJSON(t *testing.T, h http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func sessionCookies(t *testing.T, rec *httptest.ResponseRecorder) (access, refresh *http.Cookie) {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		switch c.Name {
		case auth.AccessCookieName:
			access = c
		case auth.RefreshCookieName:
			refresh = c
		}
	}
	return access, refresh
}

func TestLoginUnconfiguredReturns503(t *testing.T) {
	h := newTestHandler(t, "", "", testManager())

	rec := postJSON(t, h.Login, map[string]string{"username": "admin", "password": "x"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLoginIssuesCookiePair(t *testing.T) {
	h := newTestHandler(t, "admin", "correct password", testManager())

	rec := postJSON(t, h.Login, map[string]string{"username": "admin", "password": "correct password"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Username != "admin" {
		t.Fatalf("unexpected username %q", resp.Username)
	}
	if resp.LastLogin == nil {
		t.Fatal("expected lastLogin to be stamped")
	}

	access, refresh := sessionCookies(t, rec)
	if access == nil || access.Value == "" {
		t.Fatal("expected access cookie")
	}
	if refresh == nil || refresh.Value == "" {
		t.Fatal("expected refresh cookie")
	}
	if !access.HttpOnly || !refresh.HttpOnly {
		t.Fatal("session cookies must be http-only")
	}
	if refresh.Path != "/api/auth" {
		t.Fatalf("refresh cookie path %q", refresh.Path)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h := newTestHandler(t, "admin", "correct password", testManager())

	rec := postJSON(t, h.Login, map[string]string{"username": "admin", "password": "correct password"})
	if rec.Code != http.StatusOK {
		t.Fatalf("bootstrap login: expected 200, got %d", rec.Code)
	}

	rec = postJSON(t, h.Login, map[string]string{"username": "admin", "password": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if access, refresh := sessionCookies(t, rec); access != nil || refresh != nil {
		t.Fatal("failed login must not set cookies")
	}
}

func TestLoginValidation(t *testing.T) {
	h := newTestHandler(t, "admin", "secret", testManager())

	rec := postJSON(t, h.Login, map[string]string{"username": "admin"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLoginWithoutManagerStillVerifies(t *testing.T) {
	h := newTestHandler(t, "admin", "secret", nil)

	rec := postJSON(t, h.Login, map[string]string{"username": "admin", "password": "secret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if access, refresh := sessionCookies(t, rec); access != nil || refresh != nil {
		t.Fatal("no cookies expected without a token manager")
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	manager := testManager()
	h := newTestHandler(t, "admin", "secret", manager)

	login := postJSON(t, h.Login, map[string]string{"username": "admin", "password": "secret"})
	_, refresh := sessionCookies(t, login)
	if refresh == nil {
		t.Fatal("expected refresh cookie from login")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: auth.RefreshCookieName, Value: refresh.Value})
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	access, newRefresh := sessionCookies(t, rec)
	if access == nil || newRefresh == nil {
		t.Fatal("expected rotated cookie pair")
	}
	claims, err := manager.Parse(access.Value)
	if err != nil {
		t.Fatalf("parse rotated access token: %v", err)
	}
	if claims.Username != "admin" || claims.Role != "admin" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestRefreshWithoutCookie(t *testing.T) {
	h := newTestHandler(t, "admin", "secret", testManager())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRefreshRejectsAccessTokenAsRefresh(t *testing.T) {
	manager := testManager()
	h := newTestHandler(t, "admin", "secret", manager)

	token, err := manager.NewAccessToken("visitor", "viewer")
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: auth.RefreshCookieName, Value: token})
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non-admin role, got %d", rec.Code)
	}
}

func TestRefreshRejectsAdminAccessToken(t *testing.T) {
	manager := testManager()
	h := newTestHandler(t, "admin", "secret", manager)

	// Even a well-signed admin access token cannot stand in for the refresh
	// token.
	token, err := manager.NewAccessToken("admin", "admin")
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: auth.RefreshCookieName, Value: token})
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for access token in refresh cookie, got %d", rec.Code)
	}
	if access, refresh := sessionCookies(t, rec); access != nil || refresh != nil {
		t.Fatal("rejected refresh must not set cookies")
	}
}

func TestChangePasswordFlow(t *testing.T) {
	h := newTestHandler(t, "admin", "first-password", testManager())

	// Bootstrap the admin document.
	rec := postJSON(t, h.Login, map[string]string{"username": "admin", "password": "first-password"})
	if rec.Code != http.StatusOK {
		t.Fatalf("bootstrap login: expected 200, got %d", rec.Code)
	}

	rec = postJSON(t, h.ChangePassword, map[string]string{
		"username":        "admin",
		"currentPassword": "first-password",
		"newPassword":     "second-password",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = postJSON(t, h.Login, map[string]string{"username": "admin", "password": "second-password"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login with new password: expected 200, got %d", rec.Code)
	}
}

func TestChangePasswordRejectsShortPassword(t *testing.T) {
	h := newTestHandler(t, "admin", "first-password", testManager())

	rec := postJSON(t, h.ChangePassword, map[string]string{
		"username":        "admin",
		"currentPassword": "first-password",
		"newPassword":     "short",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSignoutClearsCookies(t *testing.T) {
	h := newTestHandler(t, "admin", "secret", testManager())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signout", nil)
	rec := httptest.NewRecorder()
	h.Signout(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	access, refresh := sessionCookies(t, rec)
	if access == nil || refresh == nil {
		t.Fatal("expected both cookies to be cleared")
	}
	if access.MaxAge != -1 || refresh.MaxAge != -1 {
		t.Fatal("expected expired cookies")
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"portfolio-backend/internal/auth"
)

func protectedHandler() (http.Handler, *bool) {
	reached := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}), &reached
}

func TestAdminAuthFailsClosedWhenUnconfigured(t *testing.T) {
	next, reached := protectedHandler()
	h := AdminAuth("", nil)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/contact/messages", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if *reached {
		t.Fatal("handler must not run without configured auth")
	}
}

func TestAdminAuthAcceptsAPIKey(t *testing.T) {
	next, reached := protectedHandler()
	h := AdminAuth("s3cret", nil)(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Admin-Key", "s3cret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !*reached {
		t.Fatalf("expected request to pass, got %d", rec.Code)
	}
}

func TestAdminAuthRejectsWrongAPIKey(t *testing.T) {
	next, reached := protectedHandler()
	h := AdminAuth("s3cret", nil)(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Admin-Key", "wrong")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if *reached {
		t.Fatal("handler must not run with a wrong key")
	}
}

func TestAdminAuthAcceptsAdminCookie(t *testing.T) {
	manager := &auth.Manager{
		Secret:    []byte("test-secret"),
		AccessTTL: time.Minute,
		Issuer:    "portfolio-backend",
	}
	token, err := manager.NewAccessToken("admin", "admin")
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	next, reached := protectedHandler()
	h := AdminAuth("", manager)(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.AccessCookieName, Value: token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !*reached {
		t.Fatalf("expected request to pass, got %d", rec.Code)
	}
}

func TestAdminAuthRejectsRefreshTokenInAccessCookie(t *testing.T) {
	manager := &auth.Manager{
		Secret:     []byte("test-secret"),
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
		Issuer:     "portfolio-backend",
	}
	token, err := manager.NewRefreshToken("admin", "admin")
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	next, reached := protectedHandler()
	h := AdminAuth("", manager)(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.AccessCookieName, Value: token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if *reached {
		t.Fatal("refresh token must not open the admin surface")
	}
}

func TestAdminAuthRejectsNonAdminRole(t *testing.T) {
	manager := &auth.Manager{
		Secret:    []byte("test-secret"),
		AccessTTL: time.Minute,
		Issuer:    "portfolio-backend",
	}
	token, err := manager.NewAccessToken("visitor", "viewer")
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	next, _ := protectedHandler()
	h := AdminAuth("", manager)(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.AccessCookieName, Value: token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

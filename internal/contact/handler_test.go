package contact

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

	"portfolio-backend/internal/validation"
)

type fakeRepo struct {
	items []Message
}

func (f *fakeRepo) Create(ctx context.Context, item Message) error {
	f.items = append(f.items, item)
	return nil
}

func (f *fakeRepo) List(ctx context.Context, limit, offset int64) ([]Message, int64, error) {
	total := int64(len(f.items))
	if offset >= total {
		return []Message{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return f.items[offset:end], total, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func postJSON(t *testing.T, h http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/contact", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestCreateStoresWithoutMailer(t *testing.T) {
	repo := &fakeRepo{}
	h := NewHandler(repo, validation.New(), discardLogger(), nil, "owner@example.com", time.UTC)

	rec := postJSON(t, h.Create, map[string]string{
		"name":    "Jane Visitor",
		"email":   "jane@example.com",
		"subject": "Hello",
		"message": "I liked your site.",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Message   Message `json:"message"`
		EmailSent bool    `json:"emailSent"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.EmailSent {
		t.Fatal("expected emailSent=false without a mailer")
	}
	if resp.Message.ID == "" {
		t.Fatal("expected stored message id")
	}
	if len(repo.items) != 1 {
		t.Fatalf("expected 1 stored message, got %d", len(repo.items))
	}
}

func TestCreateValidation(t *testing.T) {
	h := NewHandler(&fakeRepo{}, validation.New(), discardLogger(), nil, "", time.UTC)

	rec := postJSON(t, h.Create, map[string]string{
		"name":  "No Email",
		"email": "not-an-email",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, ok := resp.Details["email"]; !ok {
		t.Fatalf("expected details to name email, got %v", resp.Details)
	}
	if _, ok := resp.Details["message"]; !ok {
		t.Fatalf("expected details to name message, got %v", resp.Details)
	}
}

func TestCreateInvalidJSON(t *testing.T) {
	h := NewHandler(&fakeRepo{}, validation.New(), discardLogger(), nil, "", time.UTC)

	req := httptest.NewRequest(http.MethodPost, "/api/contact", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListPagination(t *testing.T) {
	repo := &fakeRepo{}
	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		repo.items = append(repo.items, Message{
			ID: "id", Name: "n", Email: "e@example.com", Subject: "s", Message: "m", CreatedAt: now,
		})
	}
	h := NewHandler(repo, validation.New(), discardLogger(), nil, "", time.UTC)

	req := httptest.NewRequest(http.MethodGet, "/api/contact/messages?limit=2&offset=4", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Items  []Message `json:"items"`
		Limit  int64     `json:"limit"`
		Offset int64     `json:"offset"`
		Total  int64     `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 5 || len(resp.Items) != 1 {
		t.Fatalf("unexpected page: total=%d items=%d", resp.Total, len(resp.Items))
	}
	if resp.Limit != 2 || resp.Offset != 4 {
		t.Fatalf("unexpected paging echo: limit=%d offset=%d", resp.Limit, resp.Offset)
	}
}

func TestListRejectsBadQuery(t *testing.T) {
	h := NewHandler(&fakeRepo{}, validation.New(), discardLogger(), nil, "", time.UTC)

	req := httptest.NewRequest(http.MethodGet, "/api/contact/messages?limit=abc", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

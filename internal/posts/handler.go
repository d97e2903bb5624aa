package posts

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"portfolio-backend/internal/cache"
	"portfolio-backend/internal/httpx"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/transport"
	"portfolio-backend/internal/validation"

	"github.com/go-chi/chi/v5"
)

const listCacheKey = "posts:all"

type Handler struct {
	service  *Service
	val      *validation.Validator
	log      *slog.Logger
	cache    cache.Cache
	cacheTTL time.Duration
}

func NewHandler(service *Service, val *validation.Validator, log *slog.Logger, c cache.Cache, cacheTTL time.Duration) *Handler {
	if c == nil {
		c = cache.NewNoop()
	}
	return &Handler{
		service:  service,
		val:      val,
		log:      log,
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

// List returns every post, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	if cached, ok, err := h.cache.Get(r.Context(), listCacheKey); err == nil && ok {
		transport.WriteCached(w, http.StatusOK, cached)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.service.List(ctx)
	if err != nil {
		log.Error("posts list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	if raw, err := httpx.EncodeJSON(items); err == nil {
		_ = h.cache.Set(r.Context(), listCacheKey, raw, h.cacheTTL)
	}

	log.Info("posts list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	key := strings.TrimSpace(chi.URLParam(r, "id"))
	if key == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn("posts get: not found", slog.String("key", key))
			transport.WriteError(w, http.StatusNotFound, "post not found", nil)
			return
		}
		log.Error("posts get: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if slug == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing slug", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn("posts get by slug: not found", slog.String("slug", slug))
			transport.WriteError(w, http.StatusNotFound, "post not found", nil)
			return
		}
		log.Error("posts get by slug: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req UpsertRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("posts create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	if err := h.val.Struct(req); err != nil {
		log.Warn("posts create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "missing required fields", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	item, created, err := h.service.Upsert(ctx, req)
	if err != nil {
		h.writeServiceError(w, log, "posts create", err)
		return
	}

	h.invalidate(r.Context())
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	log.Info("posts create: ok", slog.String("post_id", item.ID), slog.String("slug", item.Slug), slog.Bool("created", created))
	transport.WriteJSON(w, status, item)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(chi.URLParam(r, "id"))
	h.update(w, r, key)
}

func (h *Handler) UpdateFromBody(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, "")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, key string) {
	log := h.logWithRequest(r)

	var req UpdateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("posts update: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if key == "" {
		key = req.Key()
	}
	if key == "" {
		log.Warn("posts update: missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	if err := h.val.Struct(req); err != nil {
		log.Warn("posts update: validation error")
		transport.WriteError(w, http.StatusBadRequest, "invalid fields", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	item, err := h.service.Update(ctx, key, req)
	if err != nil {
		h.writeServiceError(w, log, "posts update", err)
		return
	}

	h.invalidate(r.Context())
	log.Info("posts update: ok", slog.String("post_id", item.ID))
	transport.WriteJSON(w, http.StatusOK, item)
}

// Toggle flips one allow-listed boolean field by id.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req ToggleRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("posts toggle: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("posts toggle: validation error")
		transport.WriteError(w, http.StatusBadRequest, "missing required fields", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	field, err := ParseToggleField(req.Property)
	if err != nil {
		log.Warn("posts toggle: invalid property", slog.String("property", req.Property))
		transport.WriteError(w, http.StatusBadRequest, "invalid toggle property", map[string]string{
			"property": "must be one of featured, published, addToHome",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	item, err := h.service.Toggle(ctx, req.ID, field)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn("posts toggle: not found", slog.String("post_id", req.ID))
			transport.WriteError(w, http.StatusNotFound, "post not found", nil)
			return
		}
		log.Error("posts toggle: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	h.invalidate(r.Context())
	log.Info("posts toggle: ok", slog.String("post_id", item.ID), slog.String("property", req.Property))
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(chi.URLParam(r, "id"))
	h.delete(w, r, key)
}

func (h *Handler) DeleteFromBody(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID      string `json:"id"`
		MongoID string `json:"_id"`
	}
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		h.logWithRequest(r).Warn("posts delete: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	key := strings.TrimSpace(req.ID)
	if key == "" {
		key = strings.TrimSpace(req.MongoID)
	}
	h.delete(w, r, key)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, key string) {
	log := h.logWithRequest(r)
	if key == "" {
		log.Warn("posts delete: missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, key); err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn("posts delete: not found", slog.String("key", key))
			transport.WriteError(w, http.StatusNotFound, "post not found", nil)
			return
		}
		log.Error("posts delete: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	h.invalidate(r.Context())
	log.Info("posts delete: ok", slog.String("key", key))
	transport.WriteMessage(w, http.StatusOK, "post deleted")
}

func (h *Handler) writeServiceError(w http.ResponseWriter, log *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		log.Warn(op + ": not found")
		transport.WriteError(w, http.StatusNotFound, "post not found", nil)
	case errors.Is(err, ErrSlugExists):
		log.Warn(op + ": slug exists")
		transport.WriteError(w, http.StatusConflict, "slug already exists", nil)
	case errors.Is(err, ErrInvalidSlug):
		log.Warn(op + ": invalid slug")
		transport.WriteError(w, http.StatusBadRequest, "invalid slug", nil)
	default:
		log.Error(op+": database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
	}
}

func (h *Handler) invalidate(ctx context.Context) {
	_ = h.cache.Delete(ctx, listCacheKey)
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

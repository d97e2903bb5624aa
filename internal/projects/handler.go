package projects

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

const listCacheKey = "projects:all"

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

// List returns every project, featured first, newest first within each group.
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
		log.Error("projects list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	if raw, err := httpx.EncodeJSON(items); err == nil {
		_ = h.cache.Set(r.Context(), listCacheKey, raw, h.cacheTTL)
	}

	log.Info("projects list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, items)
}

// Get resolves the path parameter as an id first, then as a slug.
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
			log.Warn("projects get: not found", slog.String("key", key))
			transport.WriteError(w, http.StatusNotFound, "project not found", nil)
			return
		}
		log.Error("projects get: database error", slog.String("error", err.Error()))
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
			log.Warn("projects get by slug: not found", slog.String("slug", slug))
			transport.WriteError(w, http.StatusNotFound, "project not found", nil)
			return
		}
		log.Error("projects get by slug: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	transport.WriteJSON(w, http.StatusOK, item)
}

// Create persists a new project; a body carrying an existing id turns the
// call into an update (upsert-capable POST).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req UpsertRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("projects create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	if err := h.val.Struct(req); err != nil {
		log.Warn("projects create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "missing required fields", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	item, created, err := h.service.Upsert(ctx, req)
	if err != nil {
		h.writeServiceError(w, log, "projects create", err)
		return
	}

	h.invalidate(r.Context())
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	log.Info("projects create: ok", slog.String("project_id", item.ID), slog.String("slug", item.Slug), slog.Bool("created", created))
	transport.WriteJSON(w, status, item)
}

// Update handles PUT /api/projects/{id} with an id-or-slug path parameter.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(chi.URLParam(r, "id"))
	h.update(w, r, key)
}

// UpdateFromBody handles PUT /api/projects with the id carried in the body.
func (h *Handler) UpdateFromBody(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, "")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, key string) {
	log := h.logWithRequest(r)

	var req UpdateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("projects update: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if key == "" {
		key = req.Key()
	}
	if key == "" {
		log.Warn("projects update: missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	if err := h.val.Struct(req); err != nil {
		log.Warn("projects update: validation error")
		transport.WriteError(w, http.StatusBadRequest, "invalid fields", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	item, err := h.service.Update(ctx, key, req)
	if err != nil {
		h.writeServiceError(w, log, "projects update", err)
		return
	}

	h.invalidate(r.Context())
	log.Info("projects update: ok", slog.String("project_id", item.ID))
	transport.WriteJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /api/projects/{id} with an id-or-slug path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(chi.URLParam(r, "id"))
	h.delete(w, r, key)
}

// DeleteFromBody handles DELETE /api/projects with the id carried in the body.
func (h *Handler) DeleteFromBody(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID      string `json:"id"`
		MongoID string `json:"_id"`
	}
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		h.logWithRequest(r).Warn("projects delete: invalid json")
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
		log.Warn("projects delete: missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, key); err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn("projects delete: not found", slog.String("key", key))
			transport.WriteError(w, http.StatusNotFound, "project not found", nil)
			return
		}
		log.Error("projects delete: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	h.invalidate(r.Context())
	log.Info("projects delete: ok", slog.String("key", key))
	transport.WriteMessage(w, http.StatusOK, "project deleted")
}

func (h *Handler) writeServiceError(w http.ResponseWriter, log *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		log.Warn(op + ": not found")
		transport.WriteError(w, http.StatusNotFound, "project not found", nil)
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

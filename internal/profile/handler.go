package profile

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"portfolio-backend/internal/cache"
	"portfolio-backend/internal/httpx"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/transport"
	"portfolio-backend/internal/validation"
)

const cacheKey = "profile"

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

// Get never fails: a missing profile is created with defaults, and a read
// error degrades to the default payload.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	if cached, ok, err := h.cache.Get(r.Context(), cacheKey); err == nil && ok {
		transport.WriteCached(w, http.StatusOK, cached)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item := h.service.Get(ctx)
	if item.ID != "" {
		if raw, err := httpx.EncodeJSON(item); err == nil {
			_ = h.cache.Set(r.Context(), cacheKey, raw, h.cacheTTL)
		}
	}

	log.Info("profile get: ok", slog.String("profile_id", item.ID))
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req UpsertRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("profile update: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	if err := h.val.Struct(req); err != nil {
		log.Warn("profile update: validation error")
		transport.WriteError(w, http.StatusBadRequest, "missing required fields", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	item, err := h.service.Upsert(ctx, req)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			log.Error("profile update: store unavailable", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusServiceUnavailable, "store unavailable", nil)
			return
		}
		log.Error("profile update: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	_ = h.cache.Delete(r.Context(), cacheKey)
	log.Info("profile update: ok", slog.String("profile_id", item.ID))
	transport.WriteJSON(w, http.StatusOK, item)
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

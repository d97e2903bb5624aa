package contact

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"portfolio-backend/internal/httpx"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/notifications"
	"portfolio-backend/internal/transport"
	"portfolio-backend/internal/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Handler struct {
	repo      Repository
	val       *validation.Validator
	log       *slog.Logger
	mailer    *notifications.BrevoClient
	recipient string
	location  *time.Location
}

func NewHandler(repo Repository, val *validation.Validator, log *slog.Logger, mailer *notifications.BrevoClient, recipient string, location *time.Location) *Handler {
	return &Handler{
		repo:      repo,
		val:       val,
		log:       log,
		mailer:    mailer,
		recipient: strings.TrimSpace(recipient),
		location:  location,
	}
}

// Create stores the submission and notifies the site owner. A mailer
// failure never loses the message: the stored document is the record, the
// email is best-effort and reported via emailSent.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req CreateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("contact create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("contact create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "missing required fields", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	msg := Message{
		ID:        primitive.NewObjectID().Hex(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Subject:   strings.TrimSpace(req.Subject),
		Message:   req.Message,
		CreatedAt: time.Now().In(h.location),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	if err := h.repo.Create(ctx, msg); err != nil {
		log.Error("contact create: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	emailSent := false
	if h.mailer != nil && h.recipient != "" {
		_, err := h.mailer.SendContactNotification(ctx, h.recipient, notifications.ContactNotification{
			Name:    msg.Name,
			Email:   msg.Email,
			Subject: msg.Subject,
			Message: msg.Message,
		})
		if err != nil {
			log.Error("contact create: email failed", slog.String("error", err.Error()), slog.String("contact_id", msg.ID))
		} else {
			emailSent = true
		}
	} else {
		log.Warn("contact create: mailer not configured", slog.String("contact_id", msg.ID))
	}

	log.Info("contact create: stored", slog.String("contact_id", msg.ID), slog.Bool("email_sent", emailSent))
	transport.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   msg,
		"emailSent": emailSent,
	})
}

// List is the admin view over stored submissions, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	limit, offset, err := httpx.ParseLimitOffset(r.URL.Query(), 20, 100)
	if err != nil {
		log.Warn("contact list: invalid query", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, total, err := h.repo.List(ctx, limit, offset)
	if err != nil {
		log.Error("contact list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("contact list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items":  items,
		"limit":  limit,
		"offset": offset,
		"total":  total,
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

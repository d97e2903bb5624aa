package uploads

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/transport"
)

var folderChars = regexp.MustCompile(`[^a-z0-9_-]+`)

type Handler struct {
	client   *CloudinaryClient
	log      *slog.Logger
	maxBytes int64
}

func NewHandler(client *CloudinaryClient, log *slog.Logger, maxBytes int64) *Handler {
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &Handler{
		client:   client,
		log:      log,
		maxBytes: maxBytes,
	}
}

// Upload proxies a browser-selected file to the image host. Only an image
// MIME sniff and a size cap are enforced locally; the host does the rest.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	// +1KiB headroom for the multipart framing around a max-size file.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1024)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		log.Warn("upload: invalid multipart form", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, "file too large or malformed form", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		log.Warn("upload: no file provided")
		transport.WriteError(w, http.StatusBadRequest, "no file provided", nil)
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		log.Warn("upload: file too large", slog.Int64("size", header.Size))
		transport.WriteError(w, http.StatusBadRequest, "file exceeds maximum size", nil)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		log.Error("upload: read error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "upload failed", nil)
		return
	}
	if int64(len(data)) > h.maxBytes {
		log.Warn("upload: file too large", slog.Int("size", len(data)))
		transport.WriteError(w, http.StatusBadRequest, "file exceeds maximum size", nil)
		return
	}

	if !isImage(data, header.Header.Get("Content-Type")) {
		log.Warn("upload: not an image", slog.String("content_type", header.Header.Get("Content-Type")))
		transport.WriteError(w, http.StatusBadRequest, "only image uploads are accepted", nil)
		return
	}

	if h.client == nil {
		log.Error("upload: image host credentials missing")
		transport.WriteError(w, http.StatusInternalServerError, "upload service not configured", nil)
		return
	}

	folder := sanitizeFolder(r.FormValue("type"))

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := h.client.Upload(ctx, header.Filename, data, folder)
	if err != nil {
		log.Error("upload: image host error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "upload failed", nil)
		return
	}

	log.Info("upload: ok", slog.String("public_id", result.PublicID), slog.String("folder", folder))
	transport.WriteJSON(w, http.StatusOK, result)
}

// isImage trusts the sniffed bytes over the client-declared content type.
func isImage(data []byte, declared string) bool {
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "image/") {
		return true
	}
	// SVG sniffs as text/xml; accept it when declared.
	return strings.HasPrefix(sniffed, "text/xml") && strings.HasPrefix(declared, "image/svg")
}

func sanitizeFolder(raw string) string {
	folder := folderChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), "-")
	folder = strings.Trim(folder, "-")
	if folder == "" {
		return "uploads"
	}
	return folder
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

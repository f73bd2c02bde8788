// Package api exposes the download-and-publish pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/mrrifat/anydownloader/internal/config"
	"github.com/mrrifat/anydownloader/internal/domain"
	"github.com/mrrifat/anydownloader/internal/extract"
	"github.com/mrrifat/anydownloader/internal/observability/types"
	"github.com/mrrifat/anydownloader/internal/storage"
)

// Publisher is the slice of the storage publisher the handlers need.
type Publisher interface {
	Publish(ctx context.Context, filePath string) (*domain.PublishedLocation, error)
	Probe(ctx context.Context) (*storage.ProbeResult, error)
}

// DownloadHandler orchestrates extraction and publishing for one request at a
// time: extract first, publish second, never in parallel.
type DownloadHandler struct {
	extractor extract.Extractor
	publisher Publisher
	cfg       *config.Config
	logger    types.Logger
	metrics   types.Metrics
}

// NewDownloadHandler creates a new download handler.
func NewDownloadHandler(
	extractor extract.Extractor,
	publisher Publisher,
	cfg *config.Config,
	logger types.Logger,
	metrics types.Metrics,
) *DownloadHandler {
	return &DownloadHandler{
		extractor: extractor,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
	}
}

// DownloadResponse is the success payload of the primary operation.
type DownloadResponse struct {
	Source    domain.Source `json:"source"`
	URL       string        `json:"url"`
	Filename  string        `json:"filename"`
	SizeBytes int64         `json:"size_bytes"`
	Title     string        `json:"title,omitempty"`
	Duration  float64       `json:"duration,omitempty"`
	ID        string        `json:"id,omitempty"`
}

// errorResponse mirrors the original API: failures always carry a detail
// message.
type errorResponse struct {
	Detail string `json:"detail"`
}

// DownloadAndUpload handles POST /api/download-and-upload.
func (h *DownloadHandler) DownloadAndUpload(c *gin.Context) {
	var req domain.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		h.metrics.RecordError("request", "missing_url")
		c.JSON(http.StatusBadRequest, errorResponse{Detail: "Missing 'url'."})
		return
	}

	if !isValidMediaURL(req.URL) {
		h.metrics.RecordError("request", "malformed_url")
		c.JSON(http.StatusUnprocessableEntity, errorResponse{
			Detail: "The provided 'url' is not a valid absolute http(s) URL.",
		})
		return
	}

	ctx := c.Request.Context()
	if h.cfg.Server.HandlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.Server.HandlerTimeout)
		defer cancel()
	}

	result, err := h.extractor.Extract(ctx, req.URL)
	if err != nil {
		h.respondDomainError(c, err)
		return
	}

	location, err := h.publisher.Publish(ctx, result.FilePath)
	if err != nil {
		h.respondDomainError(c, err)
		return
	}

	var sizeBytes int64
	if stat, statErr := os.Stat(result.FilePath); statErr == nil {
		sizeBytes = stat.Size()
	}

	h.metrics.RecordSuccess("request")
	h.logger.Info(ctx, "Download request finished", types.Fields{
		"url":      req.URL,
		"source":   location.Source,
		"filename": filepath.Base(result.FilePath),
	})

	c.JSON(http.StatusOK, DownloadResponse{
		Source:    location.Source,
		URL:       location.URL,
		Filename:  filepath.Base(result.FilePath),
		SizeBytes: sizeBytes,
		Title:     result.Title,
		Duration:  result.DurationSeconds,
		ID:        result.ID,
	})
}

// Health handles GET /health and GET /api/health.
func (h *DownloadHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": h.cfg.ServiceName,
	})
}

// StorageProbe handles POST /debug/b2: a minimal write-and-sign round trip
// against the object store, with no download involved.
func (h *DownloadHandler) StorageProbe(c *gin.Context) {
	result, err := h.publisher.Probe(c.Request.Context())
	if err != nil {
		h.metrics.RecordError("probe", "storage_error")
		c.JSON(http.StatusInternalServerError, errorResponse{
			Detail: truncateDetail(err.Error(), h.cfg.Server.MaxDetailLen),
		})
		return
	}

	h.metrics.RecordSuccess("probe")
	c.JSON(http.StatusOK, result)
}

// Index handles GET / with minimal fallback markup.
func (h *DownloadHandler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(
		"<h1>AnyDownloader</h1>"+
			"<p>POST <code>/api/download-and-upload</code> with JSON <code>{\"url\": \"...\"}</code>.</p>",
	))
}

// respondDomainError maps domain error codes onto HTTP status codes. Detail
// text is truncated to a bounded length so library internals do not leak
// wholesale into responses.
func (h *DownloadHandler) respondDomainError(c *gin.Context, err error) {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		h.metrics.RecordError("request", "internal")
		c.JSON(http.StatusInternalServerError, errorResponse{
			Detail: truncateDetail(err.Error(), h.cfg.Server.MaxDetailLen),
		})
		return
	}

	h.metrics.RecordError("request", de.Code)

	switch de.Code {
	case domain.CodeAuthRequired:
		// Remediation guidance instead of raw extractor output.
		c.JSON(http.StatusUnauthorized, errorResponse{Detail: de.Message + "."})
	case domain.CodeInvalidURL:
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Detail: de.Message + "."})
	default:
		c.JSON(http.StatusInternalServerError, errorResponse{
			Detail: truncateDetail(de.Error(), h.cfg.Server.MaxDetailLen),
		})
	}
}

// isValidMediaURL accepts only syntactically valid absolute http(s) URLs.
func isValidMediaURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// truncateDetail bounds user-visible error detail.
func truncateDetail(detail string, max int) string {
	if max <= 0 || len(detail) <= max {
		return detail
	}
	return detail[:max] + "..."
}

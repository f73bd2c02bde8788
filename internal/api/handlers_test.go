package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrrifat/anydownloader/internal/config"
	"github.com/mrrifat/anydownloader/internal/domain"
	"github.com/mrrifat/anydownloader/internal/observability/mocks"
	"github.com/mrrifat/anydownloader/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubExtractor returns a canned result or error.
type stubExtractor struct {
	result *domain.ExtractionResult
	err    error
}

func (s *stubExtractor) Extract(context.Context, string) (*domain.ExtractionResult, error) {
	return s.result, s.err
}

// stubPublisher returns a canned location or error and records probe calls.
type stubPublisher struct {
	location   *domain.PublishedLocation
	publishErr error
	probe      *storage.ProbeResult
	probeErr   error
	probeCalls int
}

func (s *stubPublisher) Publish(context.Context, string) (*domain.PublishedLocation, error) {
	if s.publishErr != nil {
		return nil, s.publishErr
	}
	return s.location, nil
}

func (s *stubPublisher) Probe(context.Context) (*storage.ProbeResult, error) {
	s.probeCalls++
	if s.probeErr != nil {
		return nil, s.probeErr
	}
	return s.probe, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		ServiceName: "anydownloader",
		LogLevel:    "error",
		Server: config.ServerConfig{
			Addr:           ":0",
			HandlerTimeout: time.Minute,
			MaxDetailLen:   120,
		},
		Download: config.DownloadConfig{Dir: "downloads"},
	}
}

func newTestHandler(ex *stubExtractor, pub *stubPublisher) *DownloadHandler {
	return NewDownloadHandler(ex, pub, testConfig(), mocks.NopLogger{}, mocks.NopMetrics{})
}

func performDownload(h *DownloadHandler, body string) *httptest.ResponseRecorder {
	r := gin.New()
	r.POST("/api/download-and-upload", h.DownloadAndUpload)

	req := httptest.NewRequest(http.MethodPost, "/api/download-and-upload", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func detailOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp["detail"]
}

func TestDownloadMissingURL(t *testing.T) {
	h := newTestHandler(&stubExtractor{}, &stubPublisher{})

	for _, body := range []string{`{}`, `{"url": ""}`, `not json`} {
		w := performDownload(h, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
		assert.Equal(t, "Missing 'url'.", detailOf(t, w))
	}
}

func TestDownloadMalformedURL(t *testing.T) {
	h := newTestHandler(&stubExtractor{}, &stubPublisher{})

	for _, raw := range []string{"not-a-url", "ftp://example.com/x", "http://"} {
		w := performDownload(h, `{"url": "`+raw+`"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "url: %s", raw)
	}
}

func TestDownloadAuthRequired(t *testing.T) {
	h := newTestHandler(&stubExtractor{
		err: domain.NewAuthRequiredError(errors.New("sign in to confirm you're not a bot")),
	}, &stubPublisher{})

	w := performDownload(h, `{"url": "https://example.com/watch?v=abc"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	detail := detailOf(t, w)
	assert.Contains(t, detail, "COOKIES_FROM_BROWSER")
	assert.NotContains(t, detail, "bot", "raw extractor output must not leak")
}

func TestDownloadExtractionFailed(t *testing.T) {
	h := newTestHandler(&stubExtractor{
		err: domain.NewExtractionFailedError(errors.New("Unsupported URL")),
	}, &stubPublisher{})

	w := performDownload(h, `{"url": "https://example.com/watch?v=abc"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, detailOf(t, w), "Unsupported URL")
}

func TestDownloadErrorDetailTruncated(t *testing.T) {
	h := newTestHandler(&stubExtractor{
		err: domain.NewExtractionFailedError(errors.New(strings.Repeat("x", 4000))),
	}, &stubPublisher{})

	w := performDownload(h, `{"url": "https://example.com/watch?v=abc"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	detail := detailOf(t, w)
	assert.LessOrEqual(t, len(detail), 120+len("..."))
	assert.True(t, strings.HasSuffix(detail, "..."))
}

func TestDownloadUploadFailedWithoutFallback(t *testing.T) {
	path := writeTestFile(t, "clip.mp4")
	h := newTestHandler(
		&stubExtractor{result: &domain.ExtractionResult{FilePath: path}},
		&stubPublisher{publishErr: domain.NewUploadFailedError(errors.New("bucket gone"))},
	)

	w := performDownload(h, `{"url": "https://example.com/watch?v=abc"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDownloadSuccessLocal(t *testing.T) {
	path := writeTestFile(t, "My_Clip-abc123.mp4")
	h := newTestHandler(
		&stubExtractor{result: &domain.ExtractionResult{
			FilePath:        path,
			Title:           "My Clip",
			DurationSeconds: 42,
			ID:              "abc123",
		}},
		&stubPublisher{location: &domain.PublishedLocation{
			URL:    "/downloads/My_Clip-abc123.mp4",
			Source: domain.SourceLocal,
		}},
	)

	w := performDownload(h, `{"url": "https://example.com/watch?v=abc"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp DownloadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.SourceLocal, resp.Source)
	assert.Equal(t, "/downloads/My_Clip-abc123.mp4", resp.URL)
	assert.Equal(t, "My_Clip-abc123.mp4", resp.Filename)
	assert.Equal(t, int64(4), resp.SizeBytes)
	assert.Equal(t, "My Clip", resp.Title)
	assert.Equal(t, float64(42), resp.Duration)
	assert.Equal(t, "abc123", resp.ID)
}

func TestDownloadSuccessRemote(t *testing.T) {
	path := writeTestFile(t, "clip.mp4")
	h := newTestHandler(
		&stubExtractor{result: &domain.ExtractionResult{FilePath: path}},
		&stubPublisher{location: &domain.PublishedLocation{
			URL:    "https://cdn.example.com/file/media/uploads/deadbeef-clip.mp4",
			Source: domain.SourceB2,
		}},
	)

	w := performDownload(h, `{"url": "https://example.com/watch?v=abc"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp DownloadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.SourceB2, resp.Source)
	assert.Contains(t, resp.URL, "uploads/deadbeef-clip.mp4")
}

func TestHealth(t *testing.T) {
	h := newTestHandler(&stubExtractor{}, &stubPublisher{})
	r := gin.New()
	r.GET("/health", h.Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "anydownloader", resp["service"])
}

func TestStorageProbeDisabled(t *testing.T) {
	pub := &stubPublisher{probe: &storage.ProbeResult{
		Enabled: false,
		Message: "storage uploads are disabled (set B2_ENABLED=true)",
	}}
	h := newTestHandler(&stubExtractor{}, pub)
	r := gin.New()
	r.POST("/debug/b2", h.StorageProbe)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/debug/b2", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, pub.probeCalls)

	var resp storage.ProbeResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Enabled)
	assert.NotEmpty(t, resp.Message)
}

func TestStorageProbeFailure(t *testing.T) {
	pub := &stubPublisher{probeErr: errors.New("storage healthcheck failed: denied")}
	h := newTestHandler(&stubExtractor{}, pub)
	r := gin.New()
	r.POST("/debug/b2", h.StorageProbe)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/debug/b2", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, detailOf(t, w), "healthcheck")
}

func TestIsValidMediaURL(t *testing.T) {
	valid := []string{
		"https://example.com/watch?v=abc",
		"http://example.com/clip",
	}
	invalid := []string{
		"",
		"example.com/watch",
		"ftp://example.com/clip",
		"https://",
		"/relative/path",
	}

	for _, u := range valid {
		assert.True(t, isValidMediaURL(u), u)
	}
	for _, u := range invalid {
		assert.False(t, isValidMediaURL(u), u)
	}
}

func writeTestFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
	return path
}

package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/mrrifat/anydownloader/internal/config"
	"github.com/mrrifat/anydownloader/internal/domain"
	"github.com/mrrifat/anydownloader/internal/observability/types"
)

// probeTTLCap bounds the expiry of presigned URLs handed out by the health
// probe; a probe link has no business outliving a few minutes.
const probeTTLCap = 5 * time.Minute

// Publisher turns a downloaded local file into a URL the caller can fetch.
// With uploads disabled it serves from the local downloads mount; with
// uploads enabled it pushes the file to the object store and returns a public
// or presigned URL.
type Publisher struct {
	store   ObjectStore
	cfg     config.StorageConfig
	logger  types.Logger
	metrics types.Metrics
}

// ProbeResult is the outcome of a storage health probe.
type ProbeResult struct {
	Enabled bool   `json:"enabled"`
	Bucket  string `json:"bucket,omitempty"`
	URL     string `json:"url,omitempty"`
	Message string `json:"message,omitempty"`
}

// NewPublisher creates a new publisher. store may be nil when uploads are
// disabled; it must be non-nil when cfg.Enabled is true.
func NewPublisher(store ObjectStore, cfg config.StorageConfig, logger types.Logger, metrics types.Metrics) *Publisher {
	return &Publisher{
		store:   store,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
	}
}

// Publish republishes filePath and returns its final location. Upload
// failures are recovered by falling back to the local URL as long as the
// local file survives; the caller still gets something useful.
func (p *Publisher) Publish(ctx context.Context, filePath string) (*domain.PublishedLocation, error) {
	p.metrics.StartOperation("publish")
	defer p.metrics.EndOperation("publish")
	startTime := time.Now()
	defer func() {
		p.metrics.RecordDuration("publish", time.Since(startTime).Seconds())
	}()

	// The extractor guarantees the file exists, but re-check before
	// promising a URL for it.
	if _, err := os.Stat(filePath); err != nil {
		p.metrics.RecordError("publish", "file_missing")
		return nil, domain.ErrOutputMissing
	}

	if !p.cfg.Enabled {
		p.metrics.RecordSuccess("publish")
		return p.localLocation(filePath), nil
	}

	remoteURL, err := p.upload(ctx, filePath)
	if err != nil {
		// Best-effort recovery: the download itself succeeded, so serve
		// the local copy if it is still there.
		if _, statErr := os.Stat(filePath); statErr == nil {
			p.metrics.RecordError("publish", "upload_fallback")
			p.logger.Warn(ctx, "Upload failed, falling back to local URL", types.Fields{
				"path":  filePath,
				"error": err.Error(),
			})
			return p.localLocation(filePath), nil
		}

		p.metrics.RecordError("publish", "upload_failed")
		p.logger.Error(ctx, "Upload failed and local file is gone", err, types.Fields{
			"path": filePath,
		})
		return nil, domain.NewUploadFailedError(err)
	}

	p.metrics.RecordSuccess("publish")
	return &domain.PublishedLocation{
		URL:    remoteURL,
		Source: domain.SourceB2,
	}, nil
}

// Probe verifies the storage round trip without touching the download
// adapter: write a tiny object, then produce a URL for it the same way a real
// publish would. With the feature disabled it reports so without side
// effects.
func (p *Publisher) Probe(ctx context.Context) (*ProbeResult, error) {
	if !p.cfg.Enabled {
		return &ProbeResult{
			Enabled: false,
			Message: "storage uploads are disabled (set B2_ENABLED=true)",
		}, nil
	}

	key := fmt.Sprintf("healthcheck/%s.txt", uuidHex())
	body := strings.NewReader("ok")

	if err := p.store.Put(ctx, key, body, "text/plain", int64(body.Len())); err != nil {
		return nil, fmt.Errorf("storage healthcheck failed: %w", err)
	}

	var probeURL string
	if p.cfg.PublicRead {
		probeURL = p.publicURL(key)
	} else {
		ttl := p.cfg.PresignTTL
		if ttl > probeTTLCap {
			ttl = probeTTLCap
		}
		signed, err := p.store.PresignGet(ctx, key, ttl)
		if err != nil {
			return nil, fmt.Errorf("storage healthcheck failed: %w", err)
		}
		probeURL = signed
	}

	return &ProbeResult{
		Enabled: true,
		Bucket:  p.cfg.Bucket,
		URL:     probeURL,
	}, nil
}

// upload pushes the file under a collision-safe key and returns the public or
// presigned URL for it.
func (p *Publisher) upload(ctx context.Context, filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open %q: %w", filePath, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat %q: %w", filePath, err)
	}

	key := ObjectKey(filepath.Base(filePath))
	contentType := contentTypeFor(filePath)

	if err := p.store.Put(ctx, key, file, contentType, stat.Size()); err != nil {
		return "", err
	}

	if p.cfg.PublicRead {
		return p.publicURL(key), nil
	}
	return p.store.PresignGet(ctx, key, p.cfg.PresignTTL)
}

// publicURL is deterministic given the key: configured public base (or
// endpoint + bucket) plus the object key.
func (p *Publisher) publicURL(key string) string {
	return fmt.Sprintf("%s/%s", p.cfg.PublicBase(), key)
}

// localLocation builds the locally served URL from the file's base name only,
// never the full path, so local directory structure is not leaked.
func (p *Publisher) localLocation(filePath string) *domain.PublishedLocation {
	return &domain.PublishedLocation{
		URL:    fmt.Sprintf("%s/%s", LocalMountPrefix, filepath.Base(filePath)),
		Source: domain.SourceLocal,
	}
}

// ObjectKey combines a random unguessable token with the original base name
// so concurrent uploads of identically-named files cannot collide.
func ObjectKey(baseName string) string {
	return fmt.Sprintf("uploads/%s-%s", uuidHex(), baseName)
}

// uuidHex renders a v4 UUID without dashes, matching the key format of the
// original deployment.
func uuidHex() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// contentTypeFor makes a best-effort content-type guess: content sniffing
// first, extension lookup as fallback.
func contentTypeFor(filePath string) string {
	if mtype, err := mimetype.DetectFile(filePath); err == nil {
		return mtype.String()
	}
	if byExt := mime.TypeByExtension(filepath.Ext(filePath)); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}

// Package extract wraps the yt-dlp download engine behind a narrow adapter:
// URL in, local file path plus metadata out. Site-specific delivery formats,
// stream selection and muxing are entirely yt-dlp's problem.
package extract

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/mrrifat/anydownloader/internal/config"
	"github.com/mrrifat/anydownloader/internal/domain"
	"github.com/mrrifat/anydownloader/internal/observability/types"
)

// outputTemplate keeps titles to 60 chars and appends the video id so
// concurrent downloads of different videos never collide on disk.
const outputTemplate = "%(title).60s-%(id)s.%(ext)s"

// Extractor turns a media URL into a downloaded local file.
type Extractor interface {
	Extract(ctx context.Context, rawURL string) (*domain.ExtractionResult, error)
}

// YtdlpExtractor implements Extractor on top of the go-ytdlp wrapper.
type YtdlpExtractor struct {
	cfg     config.DownloadConfig
	logger  types.Logger
	metrics types.Metrics
}

// NewYtdlpExtractor creates a new yt-dlp backed extractor.
func NewYtdlpExtractor(cfg config.DownloadConfig, logger types.Logger, metrics types.Metrics) *YtdlpExtractor {
	return &YtdlpExtractor{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
	}
}

// Extract runs yt-dlp against rawURL and returns the normalized result. The
// call blocks until the download (and any mux/recode post-processing)
// finishes; it runs on the caller's goroutine, so concurrent requests are not
// serialized behind it.
func (e *YtdlpExtractor) Extract(ctx context.Context, rawURL string) (*domain.ExtractionResult, error) {
	e.metrics.StartOperation("extract")
	defer e.metrics.EndOperation("extract")
	startTime := time.Now()
	defer func() {
		e.metrics.RecordDuration("extract", time.Since(startTime).Seconds())
	}()

	e.logger.Info(ctx, "Starting media extraction", types.Fields{
		"url": rawURL,
	})

	result, err := e.command().Run(ctx, rawURL)
	if err != nil {
		if IsBotCheck(err.Error()) {
			e.metrics.RecordError("extract", "bot_check")
			e.logger.Warn(ctx, "Extraction blocked by bot verification", types.Fields{
				"url": rawURL,
			})
			return nil, domain.NewAuthRequiredError(err)
		}

		e.metrics.RecordError("extract", "ytdlp_error")
		e.logger.Error(ctx, "Extraction failed", err, types.Fields{
			"url": rawURL,
		})
		return nil, domain.NewExtractionFailedError(err)
	}

	info, parseErr := parseInfo(result.Stdout)
	if parseErr != nil {
		e.metrics.RecordError("extract", "info_parse")
		e.logger.Error(ctx, "Failed to parse extraction info", parseErr, types.Fields{
			"url": rawURL,
		})
		return nil, domain.ErrOutputMissing
	}

	outPath := OutputPath(info)
	if outPath == "" {
		e.metrics.RecordError("extract", "output_missing")
		return nil, domain.ErrOutputMissing
	}

	// The reported path must actually exist; a missing file after an
	// apparently successful run is an internal inconsistency, not an
	// extraction failure.
	stat, statErr := os.Stat(outPath)
	if statErr != nil {
		e.metrics.RecordError("extract", "output_missing")
		e.logger.Error(ctx, "Reported output file does not exist", statErr, types.Fields{
			"url":  rawURL,
			"path": outPath,
		})
		return nil, domain.ErrOutputMissing
	}

	fileType := strings.TrimPrefix(filepath.Ext(outPath), ".")
	if fileType == "" {
		fileType = "unknown"
	}
	e.metrics.RecordFileSize(fileType, stat.Size())
	e.metrics.RecordSuccess("extract")

	e.logger.Info(ctx, "Media extraction finished", types.Fields{
		"url":        rawURL,
		"path":       outPath,
		"size_bytes": stat.Size(),
		"title":      info.Title,
		"id":         info.ID,
	})

	return &domain.ExtractionResult{
		FilePath:        outPath,
		Title:           info.Title,
		DurationSeconds: info.Duration,
		ID:              info.ID,
	}, nil
}

// command builds the yt-dlp invocation deterministically from configuration:
// best video+audio with fallback to best single stream, normalized to an mp4
// container, restricted filenames, optional cookie material.
func (e *YtdlpExtractor) command() *ytdlp.Command {
	dl := ytdlp.New().
		Output(filepath.Join(e.cfg.Dir, outputTemplate)).
		NoPlaylist().
		Quiet().
		NoWarnings().
		RestrictFilenames().
		Format("bv*+ba/b").
		MergeOutputFormat("mp4").
		RecodeVideo("mp4").
		PrintJSON()

	// Browser cookie store takes precedence over a cookie file when both
	// are configured.
	if e.cfg.CookiesFromBrowser != "" {
		dl = dl.CookiesFromBrowser(e.cfg.CookiesFromBrowser)
	} else if e.cfg.CookiesFile != "" {
		dl = dl.Cookies(e.cfg.CookiesFile)
	}

	return dl
}

// mediaInfo is the subset of yt-dlp's info dict this adapter cares about.
// yt-dlp reports the produced file in one of two shapes: a list of requested
// download descriptors, or a single top-level filepath field.
type mediaInfo struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	Filepath string  `json:"filepath"`

	RequestedDownloads []struct {
		Filepath string `json:"filepath"`
	} `json:"requested_downloads"`
}

// parseInfo decodes the info JSON yt-dlp prints after a download. Stray
// non-JSON output lines are tolerated by scanning for the first line that
// decodes cleanly.
func parseInfo(stdout string) (*mediaInfo, error) {
	trimmed := strings.TrimSpace(stdout)

	var info mediaInfo
	if err := json.Unmarshal([]byte(trimmed), &info); err == nil {
		return &info, nil
	}

	var lastErr error
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "{") {
			continue
		}
		if err := json.Unmarshal([]byte(line), &info); err == nil {
			return &info, nil
		} else {
			lastErr = err
		}
	}

	if lastErr == nil {
		lastErr = errNoInfoJSON
	}
	return nil, lastErr
}

var errNoInfoJSON = jsonError("no info JSON found in yt-dlp output")

type jsonError string

func (e jsonError) Error() string { return string(e) }

// OutputPath normalizes the dual result shape: the requested-downloads list is
// checked first, then the top-level filepath field. Returns an empty string
// when neither is present.
func OutputPath(info *mediaInfo) string {
	if info == nil {
		return ""
	}
	if len(info.RequestedDownloads) > 0 && info.RequestedDownloads[0].Filepath != "" {
		return info.RequestedDownloads[0].Filepath
	}
	return info.Filepath
}

// IsBotCheck reports whether an extraction failure message looks like the
// site demanding account cookies ("Sign in to confirm you're not a bot").
// The apostrophe shows up in several encodings depending on how the message
// travelled, so quotes are normalized before matching. Best-effort heuristic,
// not a guaranteed detector.
func IsBotCheck(msg string) bool {
	lower := strings.ToLower(msg)
	for _, q := range []string{"’", "‘", "´", "`", "â€™"} {
		lower = strings.ReplaceAll(lower, q, "'")
	}
	if strings.Contains(lower, "confirm you're not a bot") {
		return true
	}
	// Tolerate messages where the apostrophe was lost entirely.
	return strings.Contains(lower, "confirm you") && strings.Contains(lower, "not a bot")
}

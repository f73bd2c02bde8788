package domain

// Source identifies where a published file is served from.
type Source string

const (
	// SourceLocal means the file is served from the local downloads mount.
	SourceLocal Source = "local"
	// SourceB2 means the file was uploaded to the S3-compatible object store.
	SourceB2 Source = "b2"
)

// DownloadRequest represents a media download request
type DownloadRequest struct {
	URL string `json:"url"`
}

// ExtractionResult is the normalized outcome of a yt-dlp run. FilePath is
// always an existing file on disk; the metadata fields are best-effort and may
// be empty depending on the extractor.
type ExtractionResult struct {
	FilePath        string  `json:"file_path"`
	Title           string  `json:"title,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	ID              string  `json:"id,omitempty"`
}

// PublishedLocation is the final, immutable answer handed back to the caller.
type PublishedLocation struct {
	URL    string `json:"url"`
	Source Source `json:"source"`
}

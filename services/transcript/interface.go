package transcript

import (
	"context"
	"time"

	"github.com/nijaru/yt-transcript/models"
)

type Service interface {
	// Fetch returns the transcript of a video, from the cache when a fresh
	// copy exists and from the provider otherwise.
	Fetch(ctx context.Context, videoID string) (*models.Transcript, error)
}

// Archive stores assembled transcripts outside the process.
type Archive interface {
	SaveTranscript(ctx context.Context, videoID, language, text string) error
}

type Config struct {
	// CacheTTL bounds the age of cached transcripts; zero never expires.
	CacheTTL time.Duration `json:"cache_ttl"`
}

package repository

import (
	"context"

	"github.com/nijaru/yt-transcript/models"
)

// TranscriptRepository caches fetched transcripts by video identifier.
// Find returns a NotFound AppError on a miss.
type TranscriptRepository interface {
	Find(ctx context.Context, videoID string) (*models.Transcript, error)
	Save(ctx context.Context, transcript *models.Transcript) error
}

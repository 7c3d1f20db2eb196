package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/nijaru/yt-transcript/errors"
	"github.com/nijaru/yt-transcript/models"
	"github.com/nijaru/yt-transcript/repository"
)

const (
	upsertTranscriptQuery = `
        INSERT INTO transcripts (video_id, language, segments, fetched_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(video_id) DO UPDATE SET
            language = excluded.language,
            segments = excluded.segments,
            fetched_at = excluded.fetched_at
    `

	getTranscriptQuery = `
        SELECT video_id, language, segments, fetched_at
        FROM transcripts WHERE video_id = ?
    `
)

type Repository struct {
	db     *sql.DB
	config DBConfig
}

var _ repository.TranscriptRepository = (*Repository)(nil)

func NewRepository(db *sql.DB, config DBConfig) *Repository {
	return &Repository{db: db, config: config}
}

func (r *Repository) Save(ctx context.Context, transcript *models.Transcript) error {
	const op = "SQLiteRepository.Save"

	segments, err := json.Marshal(transcript.Segments)
	if err != nil {
		return errors.Internal(op, err, "Failed to encode segments")
	}

	fetchedAt := transcript.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}

	err = withRetry(ctx, r.config, func() error {
		_, err := r.db.ExecContext(ctx, upsertTranscriptQuery,
			transcript.VideoID,
			transcript.Language,
			string(segments),
			fetchedAt.UTC(),
		)
		return err
	})
	if err != nil {
		return errors.Internal(op, err, "Failed to save transcript")
	}
	return nil
}

func (r *Repository) Find(ctx context.Context, videoID string) (*models.Transcript, error) {
	const op = "SQLiteRepository.Find"

	transcript := &models.Transcript{}
	var segments string

	err := withRetry(ctx, r.config, func() error {
		return r.db.QueryRowContext(ctx, getTranscriptQuery, videoID).Scan(
			&transcript.VideoID,
			&transcript.Language,
			&segments,
			&transcript.FetchedAt,
		)
	})

	if err == sql.ErrNoRows {
		return nil, errors.NotFound(op, nil, "Transcript not found")
	}
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to query transcript")
	}

	if err := json.Unmarshal([]byte(segments), &transcript.Segments); err != nil {
		return nil, errors.Internal(op, err, "Failed to decode segments")
	}

	return transcript, nil
}

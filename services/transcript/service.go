package transcript

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/nijaru/yt-transcript/errors"
	"github.com/nijaru/yt-transcript/models"
	"github.com/nijaru/yt-transcript/repository"
	provider "github.com/nijaru/yt-transcript/transcript"
	"github.com/sirupsen/logrus"
)

var errNoTranscript = stderrors.New("provider returned no transcript")

type service struct {
	provider provider.Provider
	repo     repository.TranscriptRepository
	archive  Archive
	config   Config
	logger   logrus.FieldLogger
}

type Option func(*service)

// WithRepository enables the transcript cache.
func WithRepository(repo repository.TranscriptRepository) Option {
	return func(s *service) {
		s.repo = repo
	}
}

// WithArchive enables archiving of assembled transcripts.
func WithArchive(archive Archive) Option {
	return func(s *service) {
		s.archive = archive
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

func NewService(p provider.Provider, config Config, opts ...Option) Service {
	s := &service{
		provider: p,
		config:   config,
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Fetch(ctx context.Context, videoID string) (*models.Transcript, error) {
	const op = "TranscriptService.Fetch"
	logger := s.logger.WithFields(logrus.Fields{
		"operation": op,
		"video_id":  videoID,
	})

	if cached := s.lookup(ctx, videoID, logger); cached != nil {
		logger.Debug("Serving cached transcript")
		return cached, nil
	}

	start := time.Now()
	t, err := s.provider.Fetch(ctx, videoID)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"kind":  provider.KindOf(err).String(),
			"error": err,
		}).Info("Transcript fetch failed")
		return nil, err
	}
	if t == nil {
		logger.Warn("Provider returned no transcript")
		return nil, provider.Unknown(videoID, errNoTranscript)
	}
	if t.VideoID == "" {
		t.VideoID = videoID
	}
	if t.FetchedAt.IsZero() {
		t.FetchedAt = time.Now().UTC()
	}

	logger.WithFields(logrus.Fields{
		"segments": len(t.Segments),
		"language": t.Language,
		"duration": time.Since(start),
	}).Info("Transcript fetched")

	s.store(ctx, t, logger)
	return t, nil
}

// lookup returns a fresh cached transcript, or nil.
func (s *service) lookup(ctx context.Context, videoID string, logger logrus.FieldLogger) *models.Transcript {
	if s.repo == nil {
		return nil
	}

	cached, err := s.repo.Find(ctx, videoID)
	switch {
	case errors.IsNotFound(err):
		return nil
	case err != nil:
		logger.WithError(err).Warn("Cache lookup failed")
		return nil
	case cached.IsStale(s.config.CacheTTL):
		logger.WithField("fetched_at", cached.FetchedAt).Debug("Cached transcript is stale")
		return nil
	}
	return cached
}

func (s *service) store(ctx context.Context, t *models.Transcript, logger logrus.FieldLogger) {
	if s.repo != nil {
		if err := s.repo.Save(ctx, t); err != nil {
			logger.WithError(err).Error("Failed to cache transcript")
		}
	}

	if s.archive != nil {
		text := provider.Join(t.Segments)
		if err := s.archive.SaveTranscript(ctx, t.VideoID, t.Language, text); err != nil {
			logger.WithError(err).Error("Failed to archive transcript")
		}
	}
}

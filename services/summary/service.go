package summary

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nijaru/yt-sum/errors"
	"github.com/nijaru/yt-sum/models"
	"github.com/nijaru/yt-sum/validation"
	"github.com/sirupsen/logrus"
)

type service struct {
	client  Summarizer
	repo    Repository
	archive Archive
	logger  *logrus.Logger
	now     func() time.Time
}

type Option func(*service)

// WithRepository records every successful summary in repo.
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repo = repo
	}
}

// WithArchive copies every successful summary to archive.
func WithArchive(archive Archive) Option {
	return func(s *service) {
		s.archive = archive
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a new summary service
func NewService(client Summarizer, opts ...Option) Service {
	s := &service{
		client: client,
		logger: logrus.StandardLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Summarize(ctx context.Context, req models.Request) (*models.Result, error) {
	logger := s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"reference": req.VideoReference,
		"algorithm": req.Algorithm,
		"percent":   req.Percent,
	})

	result, err := s.client.Summarize(ctx, req)
	if err != nil {
		logger.WithError(err).WithField("kind", errors.KindOf(err)).Warn("Summarization failed")
		return nil, err
	}

	s.record(ctx, logger.WithField("video_id", result.VideoID), req, result)
	return result, nil
}

// record stores the result. Failures are logged and never reach the caller.
func (s *service) record(ctx context.Context, logger *logrus.Entry, req models.Request, result *models.Result) {
	if s.repo == nil && s.archive == nil {
		return
	}

	rec := models.NewRecord(uuid.NewString(), req, result, s.now().UTC())
	logger = logger.WithField("record_id", rec.ID)

	if s.repo != nil {
		if err := s.repo.Save(ctx, rec); err != nil {
			logger.WithError(err).Error("Failed to save summary history")
		}
	}
	if s.archive != nil {
		if err := s.archive.Save(ctx, rec); err != nil {
			logger.WithError(err).Error("Failed to archive summary")
		}
	}
}

// History lists stored summaries, newest first. An empty videoID lists the
// most recent summaries of any video.
func (s *service) History(ctx context.Context, videoID string, limit int) ([]*models.Record, error) {
	const op = "SummaryService.History"

	if s.repo == nil {
		return nil, errors.E(errors.KindInternal, op, nil, "summary history is not enabled")
	}

	if videoID == "" {
		return s.repo.Recent(ctx, limit)
	}
	if _, err := validation.VideoIDFromID(videoID); err != nil {
		return nil, err
	}
	return s.repo.ListByVideoID(ctx, videoID, limit)
}

// Archived returns the archived summary of videoID made with algorithm.
func (s *service) Archived(ctx context.Context, videoID string, algorithm models.Algorithm) (*models.Record, error) {
	const op = "SummaryService.Archived"

	if s.archive == nil {
		return nil, errors.E(errors.KindInternal, op, nil, "summary archive is not enabled")
	}
	if _, err := validation.VideoIDFromID(videoID); err != nil {
		return nil, err
	}
	if err := validation.ValidateAlgorithm(algorithm); err != nil {
		return nil, err
	}
	return s.archive.Get(ctx, videoID, algorithm)
}

func (s *service) Algorithms() []models.AlgorithmInfo {
	return models.AlgorithmCatalog()
}

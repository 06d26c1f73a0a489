package summary

import (
	"context"

	"github.com/nijaru/yt-sum/models"
)

type Service interface {
	Summarize(ctx context.Context, req models.Request) (*models.Result, error)
	History(ctx context.Context, videoID string, limit int) ([]*models.Record, error)
	Archived(ctx context.Context, videoID string, algorithm models.Algorithm) (*models.Record, error)
	Algorithms() []models.AlgorithmInfo
}

// Summarizer performs the remote summarization call.
type Summarizer interface {
	Summarize(ctx context.Context, req models.Request) (*models.Result, error)
}

// Repository stores successful summaries.
type Repository interface {
	Save(ctx context.Context, record *models.Record) error
	ListByVideoID(ctx context.Context, videoID string, limit int) ([]*models.Record, error)
	Recent(ctx context.Context, limit int) ([]*models.Record, error)
}

// Archive keeps the latest summary per video and algorithm outside the local
// database.
type Archive interface {
	Save(ctx context.Context, record *models.Record) error
	Get(ctx context.Context, videoID string, algorithm models.Algorithm) (*models.Record, error)
}

package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/nijaru/yt-sum/errors"
	"github.com/nijaru/yt-sum/models"
	"github.com/sirupsen/logrus"
)

const (
	saveAttempts = 3

	DefaultListLimit = 20
	MaxListLimit     = 100
)

const selectColumns = `SELECT id, video_id, algorithm, percent, summary,
	length_original, sentence_original, length_summary, sentence_summary, created_at
	FROM summaries`

func (d *DB) Save(ctx context.Context, record *models.Record) error {
	const op = "DB.Save"

	var err error
	for i := 0; i < saveAttempts; i++ {
		if err = d.save(ctx, record); err == nil {
			return nil
		}
		if !isLockError(err) {
			return errors.Internal(op, err, "failed to save summary")
		}
		d.logger.WithFields(logrus.Fields{
			"id":      record.ID,
			"attempt": i + 1,
		}).Debug("Database locked, retrying save")

		select {
		case <-ctx.Done():
			return errors.Internal(op, ctx.Err(), "context cancelled")
		case <-time.After(time.Duration(i+1) * 100 * time.Millisecond):
		}
	}
	return errors.Internal(op, err, "failed to save summary after retries")
}

func (d *DB) save(ctx context.Context, r *models.Record) error {
	_, err := d.db.ExecContext(ctx, `INSERT INTO summaries (
		id, video_id, algorithm, percent, summary,
		length_original, sentence_original, length_summary, sentence_summary, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.VideoID,
		string(r.Algorithm),
		r.Percent,
		r.Summary,
		r.Stats.LengthOriginal,
		r.Stats.SentenceOriginal,
		r.Stats.LengthSummary,
		r.Stats.SentenceSummary,
		r.CreatedAt.UTC(),
	)
	return err
}

// ListByVideoID returns the newest summaries of one video first.
func (d *DB) ListByVideoID(ctx context.Context, videoID string, limit int) ([]*models.Record, error) {
	const op = "DB.ListByVideoID"

	rows, err := d.db.QueryContext(ctx,
		selectColumns+` WHERE video_id = ? ORDER BY created_at DESC LIMIT ?`,
		videoID, clampLimit(limit))
	if err != nil {
		return nil, errors.Internal(op, err, "failed to query summaries")
	}
	return scanRecords(op, rows)
}

// Recent returns the newest summaries across all videos.
func (d *DB) Recent(ctx context.Context, limit int) ([]*models.Record, error) {
	const op = "DB.Recent"

	rows, err := d.db.QueryContext(ctx,
		selectColumns+` ORDER BY created_at DESC LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, errors.Internal(op, err, "failed to query summaries")
	}
	return scanRecords(op, rows)
}

func scanRecords(op string, rows *sql.Rows) ([]*models.Record, error) {
	defer rows.Close()

	records := []*models.Record{}
	for rows.Next() {
		r := &models.Record{}
		var algorithm string
		if err := rows.Scan(
			&r.ID,
			&r.VideoID,
			&algorithm,
			&r.Percent,
			&r.Summary,
			&r.Stats.LengthOriginal,
			&r.Stats.SentenceOriginal,
			&r.Stats.LengthSummary,
			&r.Stats.SentenceSummary,
			&r.CreatedAt,
		); err != nil {
			return nil, errors.Internal(op, err, "failed to scan summary")
		}
		r.Algorithm = models.Algorithm(algorithm)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal(op, err, "failed to read summaries")
	}
	return records, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

func isLockError(err error) bool {
	return strings.Contains(err.Error(), "database is locked") ||
		strings.Contains(err.Error(), "busy")
}

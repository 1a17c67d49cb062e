package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/taskflow/client-go/internal/errors"
	"github.com/taskflow/client-go/internal/models"
)

// Journal is the audit trail of detected edit conflicts and how each was
// resolved.
type Journal struct {
	db *sql.DB
}

// NewJournal creates a journal over an open database.
func NewJournal(db *sql.DB) *Journal {
	return &Journal{db: db}
}

// RecordDetected appends a pending conflict entry and returns its row ID.
func (j *Journal) RecordDetected(ctx context.Context, entry models.ConflictLog) (int64, error) {
	if entry.DetectedAt == 0 {
		entry.DetectedAt = time.Now().Unix()
	}
	if entry.Resolution == "" {
		entry.Resolution = models.ResolutionPending
	}

	res, err := j.db.ExecContext(ctx,
		`INSERT INTO conflict_log (item_id, board_id, remote_actor, remote_timestamp, resolution, detected_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ItemID, entry.BoardID, entry.RemoteActor, entry.RemoteTimestamp, entry.Resolution, entry.DetectedAt)
	if err != nil {
		return 0, errors.Wrap(errors.ErrJournal, "failed to record conflict", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(errors.ErrJournal, "failed to record conflict", err)
	}
	return id, nil
}

// RecordResolved marks an entry with its resolution and timestamp.
func (j *Journal) RecordResolved(ctx context.Context, id int64, resolution string) error {
	_, err := j.db.ExecContext(ctx,
		`UPDATE conflict_log SET resolution = ?, resolved_at = ? WHERE id = ?`,
		resolution, time.Now().Unix(), id)
	if err != nil {
		return errors.Wrap(errors.ErrJournal, "failed to record resolution", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]models.ConflictLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, item_id, board_id, remote_actor, remote_timestamp, resolution, detected_at, resolved_at
		 FROM conflict_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(errors.ErrJournal, "failed to read journal", err)
	}
	defer rows.Close()

	var out []models.ConflictLog
	for rows.Next() {
		var entry models.ConflictLog
		if err := rows.Scan(&entry.ID, &entry.ItemID, &entry.BoardID, &entry.RemoteActor,
			&entry.RemoteTimestamp, &entry.Resolution, &entry.DetectedAt, &entry.ResolvedAt); err != nil {
			return nil, errors.Wrap(errors.ErrJournal, "failed to read journal", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrJournal, "failed to read journal", err)
	}
	return out, nil
}

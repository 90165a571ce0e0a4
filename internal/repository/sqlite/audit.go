package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/taskwise/internal/model"
	"github.com/sakif/taskwise/internal/repository"
)

var _ repository.AuditRepository = (*DB)(nil)

// Append writes an audit record. The audits table is insert-only: nothing
// in this package (or anywhere else) updates or deletes rows from it.
func (db *DB) Append(ctx context.Context, record *model.AuditRecord) error {
	record.ID = xid.New().String()
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO audits (id, action, task_id, user_id, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		record.ID,
		record.Action,
		record.TaskID,
		record.UserID,
		record.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: appending audit record: %w", err)
	}

	return nil
}

// ListByTask returns the audit history for one task, oldest first.
func (db *DB) ListByTask(ctx context.Context, taskID string) ([]model.AuditRecord, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, action, task_id, user_id, timestamp
		 FROM audits WHERE task_id = ? ORDER BY timestamp`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing audit records: %w", err)
	}
	defer rows.Close()

	records := []model.AuditRecord{}
	for rows.Next() {
		var rec model.AuditRecord
		if err := rows.Scan(&rec.ID, &rec.Action, &rec.TaskID, &rec.UserID, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("sqlite: scanning audit row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating audit records: %w", err)
	}

	return records, nil
}

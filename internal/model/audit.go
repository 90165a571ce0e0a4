package model

import "time"

// Audit actions. Only UPDATE is produced today — task creation and deletion
// deliberately write no audit record, matching the observed behaviour of the
// system this replaces.
const AuditActionUpdate = "UPDATE"

// AuditRecord is an append-only log entry written as a side effect of a
// task update. Records are never mutated or deleted.
type AuditRecord struct {
	ID        string    `json:"id"        db:"id"`
	Action    string    `json:"action"    db:"action"`
	TaskID    string    `json:"taskId"    db:"task_id"`
	UserID    string    `json:"userId"    db:"user_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

package domain

import "time"

// SyncStatus is the lifecycle status of a SyncRun.
type SyncStatus string

const (
	SyncStatusRunning SyncStatus = "running"
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusFailed  SyncStatus = "failed"
	SyncStatusPartial SyncStatus = "partial"
)

// IsTerminal reports whether a run in this status may no longer change.
func (s SyncStatus) IsTerminal() bool {
	switch s {
	case SyncStatusSuccess, SyncStatusFailed, SyncStatusPartial:
		return true
	}
	return false
}

// SyncCounters holds the per-run record counts reported by a fetcher.
type SyncCounters struct {
	Fetched int `bson:"records_fetched" json:"records_fetched"`
	Created int `bson:"records_created" json:"records_created"`
	Updated int `bson:"records_updated" json:"records_updated"`
	Skipped int `bson:"records_skipped" json:"records_skipped"`
}

// SyncRun records one synchronization attempt for a connection. Runs are
// append-only: once completed they are never modified or deleted.
type SyncRun struct {
	ID           string         `bson:"_id" json:"id"`
	ConnectionID string         `bson:"connection_id" json:"connection_id"`
	StartedAt    time.Time      `bson:"started_at" json:"sync_started_at"`
	CompletedAt  *time.Time     `bson:"completed_at,omitempty" json:"sync_completed_at"`
	Status       SyncStatus     `bson:"status" json:"status"`
	SyncCounters `bson:",inline"`
	ErrorMessage *string        `bson:"error_message,omitempty" json:"error_message"`
	ErrorDetail  map[string]any `bson:"error_detail,omitempty" json:"error_details,omitempty"`
}

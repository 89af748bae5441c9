// Package worker runs scheduled provider syncs on an asynq queue backed by
// Redis.
package worker

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// TypeConnectionSync syncs one provider connection.
const TypeConnectionSync = "connection:sync"

// SyncPayload is the body of a TypeConnectionSync task.
type SyncPayload struct {
	ConnectionID string `json:"connection_id"`
}

// NewSyncTask builds a TypeConnectionSync task for connectionID.
func NewSyncTask(connectionID string, opts ...asynq.Option) (*asynq.Task, error) {
	if connectionID == "" {
		return nil, fmt.Errorf("connection id is required")
	}
	payload, err := json.Marshal(SyncPayload{ConnectionID: connectionID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeConnectionSync, payload, opts...), nil
}

package mongodb

import (
	"fmt"

	"github.com/pilab-dev/fitlink/domain"
)

const (
	ConnectionsCollection = "provider_connections"
	StatesCollection      = "oauth_states"
	SyncRunsCollection    = "provider_sync_history"
)

// storeErr marks an infrastructure failure so callers can tell it apart from
// domain outcomes.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}

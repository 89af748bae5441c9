package audit

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const serviceName = "fitlink"

// Audit actions.
const (
	ActionConnect    = "connection.connect"
	ActionDisconnect = "connection.disconnect"
	ActionDelete     = "connection.delete"
	ActionToggle     = "connection.toggle"
	ActionSync       = "connection.sync"
)

// Event represents an audit log event.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Action    string    `json:"action"`
	User      string    `json:"user,omitempty"`
	Target    string    `json:"target,omitempty"`
	Details   string    `json:"details,omitempty"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}

var auditLogger = log.Output(os.Stdout).With().Logger()

// SetOutput redirects audit events, e.g. to a dedicated file or a test buffer.
func SetOutput(logger zerolog.Logger) {
	auditLogger = logger
}

// Log records an audit event.
func Log(action, user, target, details string, success bool, err error) {
	event := Event{
		Timestamp: time.Now().UTC(),
		Service:   serviceName,
		Action:    action,
		User:      user,
		Target:    target,
		Details:   details,
		Success:   success,
	}
	if err != nil {
		event.Error = err.Error()
	}

	entry, marshalErr := json.Marshal(event)
	if marshalErr != nil {
		log.Error().Err(marshalErr).Msg("Failed to marshal audit event to JSON")
		auditLogger.Error().
			Str("action", action).
			Str("user", user).
			Str("target", target).
			Bool("success", success).
			Err(err).
			Msg("Audit Log (fallback)")
		return
	}

	auditLogger.Log().RawJSON("audit_event", entry).Msg("")
}

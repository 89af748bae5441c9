package domain

import (
	"strings"
	"time"
)

// Connection links a local user to one account at an external provider.
// There is at most one Connection per (UserID, Provider).
type Connection struct {
	ID               string         `bson:"_id" json:"id"`
	UserID           string         `bson:"user_id" json:"user_id"`
	Provider         Provider       `bson:"provider" json:"provider"`
	ProviderUserID   string         `bson:"provider_user_id" json:"provider_user_id"`
	ProviderUsername string         `bson:"provider_username,omitempty" json:"provider_username,omitempty"`
	ProviderEmail    string         `bson:"provider_email,omitempty" json:"provider_email,omitempty"`
	ProviderProfile  map[string]any `bson:"provider_profile,omitempty" json:"provider_profile,omitempty"`
	AccessToken      string         `bson:"access_token" json:"-"`
	RefreshToken     string         `bson:"refresh_token,omitempty" json:"-"`
	TokenExpiresAt   *time.Time     `bson:"token_expires_at,omitempty" json:"token_expires_at,omitempty"`
	Scopes           []string       `bson:"scopes,omitempty" json:"scopes,omitempty"`
	IsActive         bool           `bson:"is_active" json:"is_active"`
	LastSyncAt       *time.Time     `bson:"last_sync_at,omitempty" json:"last_sync_at,omitempty"`
	LastSyncError    *string        `bson:"last_sync_error,omitempty" json:"last_sync_error,omitempty"`
	CreatedAt        time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `bson:"updated_at" json:"updated_at"`
}

// PublicConnection is the token-free view of a Connection returned to callers.
type PublicConnection struct {
	ID            string     `json:"id"`
	Provider      Provider   `json:"provider"`
	ProviderEmail *string    `json:"provider_email"`
	IsActive      bool       `json:"is_active"`
	LastSyncAt    *time.Time `json:"last_sync_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Public strips credentials and internal bookkeeping from c.
func (c *Connection) Public() PublicConnection {
	view := PublicConnection{
		ID:         c.ID,
		Provider:   c.Provider,
		IsActive:   c.IsActive,
		LastSyncAt: c.LastSyncAt,
		CreatedAt:  c.CreatedAt,
	}
	if c.ProviderEmail != "" {
		email := c.ProviderEmail
		view.ProviderEmail = &email
	}
	return view
}

// Credential is the normalized result of a successful token exchange, ready to
// be reconciled into a Connection.
type Credential struct {
	ProviderUserID   string
	ProviderUsername string
	ProviderEmail    string
	AccessToken      string
	RefreshToken     string
	ExpiresAt        *time.Time
	Scopes           []string
	Profile          map[string]any
}

// ConnectionPatch carries a partial update. Nil fields are left untouched.
type ConnectionPatch struct {
	AccessToken     *string        `json:"access_token,omitempty"`
	RefreshToken    *string        `json:"refresh_token,omitempty"`
	TokenExpiresAt  *time.Time     `json:"token_expires_at,omitempty"`
	IsActive        *bool          `json:"is_active,omitempty"`
	LastSyncAt      *time.Time     `json:"last_sync_at,omitempty"`
	ProviderProfile map[string]any `json:"connection_metadata,omitempty"`
}

// IsEmpty reports whether the patch sets no field at all.
func (p *ConnectionPatch) IsEmpty() bool {
	if p == nil {
		return true
	}
	return p.AccessToken == nil &&
		p.RefreshToken == nil &&
		p.TokenExpiresAt == nil &&
		p.IsActive == nil &&
		p.LastSyncAt == nil &&
		p.ProviderProfile == nil
}

// ParseScopes splits a comma- or space-separated scope string into a list,
// dropping empty entries and duplicates.
func ParseScopes(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' '
	})
	seen := make(map[string]bool, len(fields))
	scopes := make([]string, 0, len(fields))
	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			scopes = append(scopes, f)
		}
	}
	return scopes
}

// ConnectionSummary aggregates a user's connections for dashboards.
type ConnectionSummary struct {
	TotalConnections    int                   `json:"total_connections"`
	ActiveConnections   int                   `json:"active_connections"`
	InactiveConnections int                   `json:"inactive_connections"`
	Providers           []Provider            `json:"providers"`
	Connections         []ConnectionDashboard `json:"connections"`
}

// ConnectionDashboard is one line of a ConnectionSummary.
type ConnectionDashboard struct {
	ID         string     `json:"id"`
	Provider   Provider   `json:"provider"`
	IsActive   bool       `json:"is_active"`
	LastSyncAt *time.Time `json:"last_sync_at"`
	HasError   bool       `json:"has_error"`
}

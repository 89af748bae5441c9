package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownProvider       = errors.New("unknown provider")
	ErrProviderNotConfigured = errors.New("provider is not configured")
	ErrNotImplemented        = errors.New("provider flow is not implemented")
	ErrInvalidOrExpiredState = errors.New("invalid or expired state parameter")
	ErrTokenExchangeFailed   = errors.New("failed to exchange authorization code for access token")
	ErrNotFound              = errors.New("not found")
	ErrNoFieldsToUpdate      = errors.New("no fields to update")
	ErrConnectionInactive    = errors.New("connection is not active")
	ErrStoreUnavailable      = errors.New("store unavailable")

	// ErrConnectionConflict is returned by a ConnectionRepository when a write
	// lost a race against a concurrent insert for the same (user, provider).
	ErrConnectionConflict = errors.New("connection already exists for user and provider")

	ErrSyncRunCompleted  = errors.New("sync run already completed")
	ErrInvalidSyncStatus = errors.New("invalid terminal sync status")
	ErrInvalidLimit      = errors.New("limit must be between 1 and 100")

	// ErrPartialSync is wrapped by activity fetchers that imported some but not
	// all of the available data.
	ErrPartialSync = errors.New("sync completed partially")
)

// TokenExchangeError describes a rejected or failed authorization-code exchange.
// StatusCode is zero when the provider could not be reached at all.
type TokenExchangeError struct {
	Provider   Provider
	StatusCode int
	Err        error
}

func (e *TokenExchangeError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: token exchange failed: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: token endpoint returned status %d: %v", e.Provider, e.StatusCode, e.Err)
}

func (e *TokenExchangeError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrTokenExchangeFailed) match every TokenExchangeError.
func (e *TokenExchangeError) Is(target error) bool {
	return target == ErrTokenExchangeFailed
}

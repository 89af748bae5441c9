package provider

import (
	"errors"
	"time"

	"github.com/pilab-dev/fitlink/domain"
	"golang.org/x/oauth2"
)

var StravaEndpoint = oauth2.Endpoint{
	AuthURL:   "https://www.strava.com/oauth/authorize",
	TokenURL:  "https://www.strava.com/oauth/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

var stravaScopes = []string{"read", "activity:read_all", "profile:read_all"}

// StravaDescriptor returns the Strava registry entry.
func StravaDescriptor() Descriptor {
	return Descriptor{
		Provider:       domain.ProviderStrava,
		DisplayName:    "Strava",
		Description:    "Running, cycling, and swimming activities",
		AuthType:       AuthTypeOAuth2,
		Implemented:    true,
		Endpoint:       StravaEndpoint,
		Scopes:         stravaScopes,
		ScopeDelimiter: ",",
		ExtraParams:    map[string]string{"approval_prompt": "auto"},
		Normalize:      normalizeStrava,
	}
}

// normalizeStrava reads the athlete summary Strava embeds in its token response.
func normalizeStrava(token *oauth2.Token) (*domain.Credential, error) {
	athlete, _ := token.Extra("athlete").(map[string]any)
	if athlete == nil {
		return nil, errors.New("strava: token response has no athlete")
	}
	athleteID, ok := idString(athlete["id"])
	if !ok {
		return nil, errors.New("strava: athlete id is missing")
	}

	cred := &domain.Credential{
		ProviderUserID: athleteID,
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		ExpiresAt:      expiryPtr(token),
		Scopes:         append([]string(nil), stravaScopes...),
		Profile: map[string]any{
			"athlete":    athlete,
			"token_type": tokenType(token),
		},
	}
	cred.ProviderUsername, _ = athlete["username"].(string)
	cred.ProviderEmail, _ = athlete["email"].(string)

	// expires_at is authoritative; expires_in is relative to a clock we don't share.
	if expiresAt, ok := token.Extra("expires_at").(float64); ok && expiresAt > 0 {
		at := time.Unix(int64(expiresAt), 0).UTC()
		cred.ExpiresAt = &at
	}

	return cred, nil
}

func tokenType(token *oauth2.Token) string {
	if token.TokenType == "" {
		return "Bearer"
	}
	return token.TokenType
}

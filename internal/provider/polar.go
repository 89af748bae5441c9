package provider

import (
	"errors"

	"github.com/pilab-dev/fitlink/domain"
	"golang.org/x/oauth2"
)

var PolarEndpoint = oauth2.Endpoint{
	AuthURL:   "https://flow.polar.com/oauth2/authorization",
	TokenURL:  "https://polarremote.com/v2/oauth2/token",
	AuthStyle: oauth2.AuthStyleInHeader,
}

var polarScopes = []string{"accesslink.read_all"}

// PolarDescriptor returns the Polar AccessLink registry entry.
func PolarDescriptor() Descriptor {
	return Descriptor{
		Provider:    domain.ProviderPolar,
		DisplayName: "Polar Flow",
		Description: "Polar device activities",
		AuthType:    AuthTypeOAuth2,
		Implemented: true,
		Endpoint:    PolarEndpoint,
		Scopes:      polarScopes,
		Normalize:   normalizePolar,
	}
}

// normalizePolar maps an AccessLink token response. Polar issues no refresh
// tokens and identifies the user with x_user_id.
func normalizePolar(token *oauth2.Token) (*domain.Credential, error) {
	userID, ok := idString(token.Extra("x_user_id"))
	if !ok {
		return nil, errors.New("polar: x_user_id is missing")
	}

	return &domain.Credential{
		ProviderUserID: userID,
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		ExpiresAt:      expiryPtr(token),
		Scopes:         append([]string(nil), polarScopes...),
		Profile: map[string]any{
			"x_user_id":  userID,
			"token_type": tokenType(token),
		},
	}, nil
}

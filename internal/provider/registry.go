package provider

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pilab-dev/fitlink/domain"
)

// DefaultExchangeTimeout bounds a single call to a provider token endpoint.
const DefaultExchangeTimeout = 15 * time.Second

// Registry maps every known provider to its descriptor and configuration.
type Registry struct {
	descriptors map[domain.Provider]Descriptor
	configs     map[domain.Provider]Config
	redirectURL string
	httpClient  *http.Client
	timeout     time.Duration
}

// Option customizes a Registry.
type Option func(*Registry)

// WithHTTPClient sets the client used for token endpoint calls.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Registry) {
		r.httpClient = client
	}
}

// WithExchangeTimeout overrides DefaultExchangeTimeout.
func WithExchangeTimeout(timeout time.Duration) Option {
	return func(r *Registry) {
		r.timeout = timeout
	}
}

// WithDescriptor registers or replaces a descriptor.
func WithDescriptor(desc Descriptor) Option {
	return func(r *Registry) {
		r.descriptors[desc.Provider] = desc
	}
}

// NewRegistry builds a registry over the built-in descriptors.
func NewRegistry(redirectURL string, configs map[domain.Provider]Config, opts ...Option) *Registry {
	r := &Registry{
		descriptors: make(map[domain.Provider]Descriptor, len(domain.AllProviders)),
		configs:     configs,
		redirectURL: redirectURL,
		timeout:     DefaultExchangeTimeout,
	}
	if r.configs == nil {
		r.configs = map[domain.Provider]Config{}
	}
	for _, desc := range builtinDescriptors() {
		r.descriptors[desc.Provider] = desc
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Descriptor returns the descriptor registered for p.
func (r *Registry) Descriptor(p domain.Provider) (Descriptor, bool) {
	desc, ok := r.descriptors[p]
	return desc, ok
}

// Client returns a ready-to-use client for p. The checks run in a fixed order:
// unknown provider, unimplemented flow, missing client credentials.
func (r *Registry) Client(p domain.Provider) (*Client, error) {
	desc, ok := r.descriptors[p]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownProvider, p)
	}
	if !desc.Implemented || desc.Normalize == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotImplemented, p)
	}

	cfg := r.configs[p]
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: %s client id is missing", domain.ErrProviderNotConfigured, p)
	}

	return newClient(desc, cfg, r.redirectURL, r.httpClient, r.timeout), nil
}

// CatalogueEntry describes a provider to end users.
type CatalogueEntry struct {
	ID          domain.Provider `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	OAuthType   AuthType        `json:"oauth_type"`
	Implemented bool            `json:"implemented"`
}

// Catalogue lists every known provider in domain.AllProviders order.
func (r *Registry) Catalogue() []CatalogueEntry {
	entries := make([]CatalogueEntry, 0, len(r.descriptors))
	for _, p := range domain.AllProviders {
		desc, ok := r.descriptors[p]
		if !ok {
			continue
		}
		entries = append(entries, CatalogueEntry{
			ID:          desc.Provider,
			Name:        desc.DisplayName,
			Description: desc.Description,
			OAuthType:   desc.AuthType,
			Implemented: desc.Implemented,
		})
	}

	return entries
}

func builtinDescriptors() []Descriptor {
	return []Descriptor{
		StravaDescriptor(),
		PolarDescriptor(),
		{
			Provider:    domain.ProviderGarmin,
			DisplayName: "Garmin Connect",
			Description: "All Garmin device activities",
			AuthType:    AuthTypeOAuth1a,
		},
		{
			Provider:    domain.ProviderCoros,
			DisplayName: "COROS",
			Description: "COROS device activities",
			AuthType:    AuthTypeOAuth2,
		},
		{
			Provider:    domain.ProviderWahoo,
			DisplayName: "Wahoo",
			Description: "Wahoo device activities",
			AuthType:    AuthTypeOAuth2,
		},
		{
			Provider:    domain.ProviderFitbit,
			DisplayName: "Fitbit",
			Description: "Fitbit device activities",
			AuthType:    AuthTypeOAuth2,
		},
	}
}

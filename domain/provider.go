package domain

import (
	"fmt"
	"strings"
)

// Provider identifies an external fitness-tracking service a user can link.
type Provider string

const (
	ProviderGarmin Provider = "garmin"
	ProviderStrava Provider = "strava"
	ProviderPolar  Provider = "polar"
	ProviderCoros  Provider = "coros"
	ProviderWahoo  Provider = "wahoo"
	ProviderFitbit Provider = "fitbit"
)

// AllProviders lists every provider the system knows about, in catalogue order.
var AllProviders = []Provider{
	ProviderStrava,
	ProviderGarmin,
	ProviderPolar,
	ProviderCoros,
	ProviderWahoo,
	ProviderFitbit,
}

// ParseProvider converts a raw name (case-insensitive) into a Provider.
func ParseProvider(name string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(name)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

// Valid reports whether p is one of the enumerated providers.
func (p Provider) Valid() bool {
	for _, known := range AllProviders {
		if p == known {
			return true
		}
	}
	return false
}

func (p Provider) String() string {
	return string(p)
}

// Package suggest produces fix suggestions for accessibility issues
// through an ordered provider fallback chain.
package suggest

import (
	"context"
	"errors"
)

// Provider generates remediation text for one prompt.
type Provider interface {
	// Name identifies the provider in logs.
	Name() string

	// Suggest returns generated remediation text. Failures are
	// classified through the sentinel errors below.
	Suggest(ctx context.Context, prompt string) (string, error)
}

var (
	// ErrRateLimited reports a rate-limit signal (HTTP 429) from a provider.
	ErrRateLimited = errors.New("provider rate limited")

	// ErrUnavailable reports a provider that cannot be called at all,
	// typically because no credential is configured.
	ErrUnavailable = errors.New("provider unavailable")

	// ErrNoResponse reports a well-formed reply carrying no generated text.
	ErrNoResponse = errors.New("no response from provider")
)

package source

import "context"

// Provider defines how to fetch skill content into a local directory.
type Provider interface {
	// Type returns the provider identifier (e.g., "git", "http")
	Type() string

	// Fetch downloads the content at url into destPath
	Fetch(ctx context.Context, url string, destPath string, opts FetchOptions) error

	// CanHandle returns true if this provider can handle the given URL
	CanHandle(url string) bool
}

// providers is the registry of available providers
var providers = make(map[string]Provider)

// RegisterProvider adds a provider to the registry
func RegisterProvider(p Provider) {
	providers[p.Type()] = p
}

// GetProvider returns a provider by type
func GetProvider(providerType string) Provider {
	return providers[providerType]
}

// DetectProvider auto-selects a provider based on URL shape.
func DetectProvider(url string) Provider {
	if p := providers["http"]; p != nil && p.CanHandle(url) {
		return p
	}
	if p := providers["git"]; p != nil && p.CanHandle(url) {
		return p
	}
	return nil
}

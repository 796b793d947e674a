// Package source provides the transport layer for skill content: a provider
// abstraction over git clones and HTTP archive downloads, selected by URL
// shape once at dispatch time.
package source

// FetchOptions for Provider.Fetch.
type FetchOptions struct {
	Ref     string            // branch/tag/commit for git; ignored by http
	Headers map[string]string // extra headers for HTTP downloads
}

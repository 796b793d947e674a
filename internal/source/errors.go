package source

import "fmt"

// SourceError represents a transport-level failure
type SourceError struct {
	Op     string // operation
	Source string // source identifier
	Err    error  // underlying error
}

func (e *SourceError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Source, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Common errors
var (
	ErrProviderNotFound = fmt.Errorf("no provider for URL")
	ErrFetchFailed      = fmt.Errorf("fetch failed")
)

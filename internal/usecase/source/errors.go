// Package source provides use cases for managing feed sources: registration
// with tag defaults, listing, lookup, deletion, and activation toggling.
package source

import "errors"

// Sentinel errors for source use case operations.
var (
	// ErrSourceNotFound indicates that the requested source was not found.
	ErrSourceNotFound = errors.New("source not found")
)

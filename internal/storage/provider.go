// Package storage defines where manifest and article text is read from.
package storage

import "context"

// Provider fetches text resources by path relative to the content root.
// A missing resource is reported as an error wrapping apperr.ErrNotFound.
type Provider interface {
	Read(ctx context.Context, path string) ([]byte, error)
}

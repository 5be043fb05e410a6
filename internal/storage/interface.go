package storage

import (
	"context"

	"github.com/julianstephens/habitual/internal/docstore"
)

// Provider is a document store with the app's lifecycle: Init prepares a new
// store (schema, indexes), Load opens an existing one.
type Provider interface {
	docstore.Store

	Init(ctx context.Context) error
	Load(ctx context.Context) error

	// Describe returns a non-sensitive identifier for diagnostics.
	Describe() string
}

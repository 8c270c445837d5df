//go:generate mockgen -source ./store.go -destination=./mocks/store.go -package=mock_store
package store

import "context"

// Store holds the single application document. Load returns a snapshot the
// caller may mutate freely; Save replaces the persisted document wholesale.
// Callers run a load-mutate-save cycle per request, so two concurrent
// mutations can race (last writer wins). That is an accepted limitation of
// this system, not something the implementations paper over.
type Store interface {
	Load(ctx context.Context) (*Document, error)
	Save(ctx context.Context, doc *Document) error
}

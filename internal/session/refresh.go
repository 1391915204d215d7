package session

import (
	"context"
	"errors"

	"github.com/spec-kit/claims-console/internal/domain"
)

// ErrSuperseded is returned by Refresh when a newer set or clear landed while the
// fetch was in flight; the fetched identity is discarded.
var ErrSuperseded = errors.New("session: refresh superseded")

// Fetcher loads the current identity from the backend.
type Fetcher interface {
	FetchIdentity(ctx context.Context) (domain.Identity, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) (domain.Identity, error)

// FetchIdentity calls f.
func (f FetcherFunc) FetchIdentity(ctx context.Context) (domain.Identity, error) {
	return f(ctx)
}

// Refresh refetches the identity into store. Any failure clears the store so a
// stale identity is never left in place.
func Refresh(ctx context.Context, store *Store, fetcher Fetcher) error {
	gen := store.Generation()

	identity, err := fetcher.FetchIdentity(ctx)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		store.ClearIdentity()
		return err
	}

	if !store.setIfGeneration(gen, identity) {
		return ErrSuperseded
	}
	return nil
}

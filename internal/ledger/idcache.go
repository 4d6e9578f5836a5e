package ledger

import (
	"context"
	"fmt"
	"sync"

	"kasboek/internal/core"
)

// Resolver looks accounts up by name through a Source, memoizing the
// name→id mapping so repeated page loads skip the full account listing.
// Balances are always fetched fresh; only the id is cached. The zero
// Resolver is not usable; construct with NewResolver and share one
// instance from the composition root.
type Resolver struct {
	source Source

	mu  sync.Mutex
	ids map[string]int64
}

func NewResolver(source Source) *Resolver {
	return &Resolver{source: source, ids: make(map[string]int64)}
}

// Account resolves a named account, using the cached id when present and
// falling back to (and recording) a by-name lookup otherwise.
func (r *Resolver) Account(ctx context.Context, name string) (core.Account, error) {
	r.mu.Lock()
	id, ok := r.ids[name]
	r.mu.Unlock()

	if ok {
		account, err := r.source.AccountByID(ctx, id)
		if err != nil {
			return core.Account{}, fmt.Errorf("account %q by cached id %d: %w", name, id, err)
		}
		return account, nil
	}

	account, err := r.source.AccountByName(ctx, name)
	if err != nil {
		return core.Account{}, err
	}

	r.mu.Lock()
	r.ids[name] = account.ID
	r.mu.Unlock()
	return account, nil
}

// Forget drops a cached id, forcing the next lookup to resolve by name.
func (r *Resolver) Forget(name string) {
	r.mu.Lock()
	delete(r.ids, name)
	r.mu.Unlock()
}

package graph

import (
	"context"
	"sync"
)

// Store is the read-side contract over the organizational graph store.
// Implementations cache snapshots; Invalidate drops the cache and notifies
// subscribers so derived artifacts (the semantic index in particular) can
// rebuild.
type Store interface {
	// Snapshot returns the full graph. Repeated calls return the cached
	// snapshot until Invalidate is called.
	Snapshot(ctx context.Context) (*Snapshot, error)

	// Node returns a single node by ID, or nil when absent.
	Node(ctx context.Context, id string) (*Node, error)

	// Invalidate drops the cached snapshot and fires mutation subscribers.
	Invalidate()

	// Subscribe registers a callback invoked on every Invalidate.
	Subscribe(fn func())
}

// notifier implements the Subscribe/Invalidate half of Store.
type notifier struct {
	mu   sync.Mutex
	subs []func()
}

func (n *notifier) Subscribe(fn func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, fn)
}

func (n *notifier) notify() {
	n.mu.Lock()
	subs := make([]func(), len(n.subs))
	copy(subs, n.subs)
	n.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

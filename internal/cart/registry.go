package cart

import (
	"context"
	"sync"

	pkgerrors "github.com/meditrack-ph/meditrack-backend/pkg/errors"
	"github.com/meditrack-ph/meditrack-backend/pkg/logger"
)

// Registry hands out one Manager per session. Guest sessions are keyed by
// their client-issued session id; authenticated sessions by user id. When a
// guest session authenticates, its items migrate into the user's manager and
// the guest entry is dropped.
type Registry struct {
	mu       sync.Mutex
	managers map[string]*Manager
	store    RemoteStore
	syncer   Syncer
	logg     *logger.Logger
}

// NewRegistry builds an empty registry over the given store and syncer.
func NewRegistry(store RemoteStore, syncer Syncer, logg *logger.Logger) (*Registry, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "remote store is required")
	}
	if syncer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "syncer is required")
	}
	return &Registry{
		managers: make(map[string]*Manager),
		store:    store,
		syncer:   syncer,
		logg:     logg,
	}, nil
}

func userKey(userID string) string   { return "user:" + userID }
func guestKey(session string) string { return "guest:" + session }

// Guest returns the manager for an anonymous session, creating it on first
// use.
func (r *Registry) Guest(sessionID string) (*Manager, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest session id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getOrCreateLocked(guestKey(sessionID))
}

// Principal returns the manager for an authenticated user, resolving the
// remote cart on first sight. When guestSessionID names a live guest manager
// its items are merged in and the guest entry is discarded.
func (r *Registry) Principal(ctx context.Context, userID, guestSessionID string) (*Manager, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	r.mu.Lock()
	mgr, err := r.getOrCreateLocked(userKey(userID))
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}

	var guest *Cart
	if guestSessionID != "" {
		if gm, ok := r.managers[guestKey(guestSessionID)]; ok {
			guest = gm.Snapshot()
		}
	}
	r.mu.Unlock()

	if mgr.State() == StateBound {
		mgr.MergeGuest(guest)
	} else if err := mgr.Resolve(ctx, userID, guest); err != nil {
		// The guest entry stays; a retry after a transient store failure
		// still finds the unmerged items.
		return nil, err
	}

	if guestSessionID != "" {
		r.mu.Lock()
		delete(r.managers, guestKey(guestSessionID))
		r.mu.Unlock()
	}
	return mgr, nil
}

// Evict drops a session's manager, typically after checkout closes its cart.
func (r *Registry) Evict(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.managers, userKey(userID))
}

// Len reports the number of live managers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.managers)
}

func (r *Registry) getOrCreateLocked(key string) (*Manager, error) {
	if mgr, ok := r.managers[key]; ok {
		return mgr, nil
	}
	mgr, err := NewManager(r.store, r.syncer, r.logg)
	if err != nil {
		return nil, err
	}
	r.managers[key] = mgr
	return mgr, nil
}

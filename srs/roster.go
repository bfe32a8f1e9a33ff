package srs

import (
	"context"

	"github.com/sasha-s/go-csync"
)

// Roster is the client's view of every client connected to the server,
// keyed by GUID. The local client always appears under its own GUID.
//
// Roster is safe for concurrent use. In the session controller the writers
// are the TCP message pump and the local-entry updates made by
// session.New and Session.TuneRadio; readers may be called from any
// goroutine.
type Roster struct {
	mu      csync.Mutex
	clients map[string]ClientInfo
}

// NewRoster returns an empty Roster.
func NewRoster() *Roster {
	return &Roster{clients: make(map[string]ClientInfo)}
}

// lock acquires the roster's context-aware mutex with a background
// context, for call sites that cannot be cancelled.
func (r *Roster) lock() {
	// A background context never errors, so the lock is unconditional here.
	_ = r.mu.Lock(context.Background())
}

// InsertOrReplace stores info under guid, replacing any existing entry.
func (r *Roster) InsertOrReplace(guid string, info ClientInfo) {
	r.lock()
	r.clients[guid] = info
	r.mu.Unlock()
}

// MergeFields shallow-overwrites the stored entry for guid with info: every
// top-level field of info replaces the corresponding stored field, and
// RadioInfo is replaced as a whole unit rather than merged slot-by-slot. If
// guid is absent, MergeFields behaves as InsertOrReplace.
//
// This is deliberately not a deep merge: a server that sends a partial
// RadioInfo on an UPDATE will blow away the previously known radio slots.
func (r *Roster) MergeFields(guid string, info ClientInfo) {
	r.lock()
	r.clients[guid] = info
	r.mu.Unlock()
}

// Remove deletes the entry for guid, if any. Removing an absent GUID is a
// no-op, not an error.
func (r *Roster) Remove(guid string) {
	r.lock()
	delete(r.clients, guid)
	r.mu.Unlock()
}

// Get returns the stored entry for guid, and whether it was present.
func (r *Roster) Get(guid string) (ClientInfo, bool) {
	r.lock()
	defer r.mu.Unlock()
	info, ok := r.clients[guid]
	return info, ok
}

// Len returns the number of known clients, including the local one.
func (r *Roster) Len() int {
	r.lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Snapshot returns a shallow copy of the roster contents. Mutating the
// returned map does not affect the Roster.
func (r *Roster) Snapshot() map[string]ClientInfo {
	r.lock()
	defer r.mu.Unlock()

	out := make(map[string]ClientInfo, len(r.clients))
	for guid, info := range r.clients {
		out[guid] = info
	}
	return out
}

// LockContext locks the roster, aborting early if ctx is done before the
// lock is acquired. Nothing in this module calls it; Session.Close does not
// take the roster lock.
func (r *Roster) LockContext(ctx context.Context) error {
	return r.mu.Lock(ctx)
}

// Unlock releases a lock taken with LockContext.
func (r *Roster) Unlock() {
	r.mu.Unlock()
}

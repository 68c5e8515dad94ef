package chat

import (
	"cmp"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Registry is the authoritative mapping from display name to session.
//
// Register, Unregister, Rename and Release are serialized by one write lock;
// Lookup, Snapshot, Count and Sessions share the read lock and therefore always
// observe a complete state. The registry never writes to a connection.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Register inserts name -> session if the name is free and returns false
// without side effects otherwise.
func (r *Registry) Register(name string, session *Session) bool {
	if name == "" || session == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.sessions[name]; taken {
		return false
	}
	r.sessions[name] = session
	session.setName(name)
	return true
}

// Unregister removes the entry for name. Removing an absent name is a no-op.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, name)
}

// Release removes the entry owned by session under its current name and returns
// that name. It reports false if the session holds no entry, which makes
// teardown idempotent.
func (r *Registry) Release(session *Session) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := session.Name()
	if owner, ok := r.sessions[name]; !ok || owner != session {
		return "", false
	}
	delete(r.sessions, name)
	return name, true
}

// Rename moves oldName's session to newName in one step. It fails without
// mutation if newName is taken or oldName is not registered.
func (r *Registry) Rename(oldName, newName string) bool {
	if newName == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.sessions[newName]; taken {
		return false
	}
	session, ok := r.sessions[oldName]
	if !ok {
		return false
	}
	delete(r.sessions, oldName)
	r.sessions[newName] = session
	session.setName(newName)
	return true
}

// Lookup returns the session currently registered under name.
func (r *Registry) Lookup(name string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[name]
	return session, ok
}

// Snapshot returns the registered names in sorted order. The result may be
// stale as soon as it is returned.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	names := lo.Keys(r.sessions)
	r.mu.RUnlock()

	slices.Sort(names)
	return names
}

// Count returns the number of registered names.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sessions returns the registered sessions ordered by name.
func (r *Registry) Sessions() []*Session {
	r.mu.RLock()
	entries := lo.Entries(r.sessions)
	r.mu.RUnlock()

	slices.SortFunc(entries, func(a, b lo.Entry[string, *Session]) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return lo.Map(entries, func(e lo.Entry[string, *Session], _ int) *Session {
		return e.Value
	})
}

package realtime

import (
	"encoding/json"
	"log"
	"sync"
)

// Registry maps group keys to the sessions subscribed to them. It is
// the single source of truth for group membership: the per-session
// joined set and the per-group member set are held in the same
// structure and mutated under one lock, so the two views cannot
// diverge.
type Registry struct {
	mu       sync.RWMutex
	groups   map[string]map[*Session]struct{}
	sessions map[*Session]map[string]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		groups:   make(map[string]map[*Session]struct{}),
		sessions: make(map[*Session]map[string]struct{}),
	}
}

// Join adds the session to the group. Idempotent.
func (r *Registry) Join(key string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.groups[key] == nil {
		r.groups[key] = make(map[*Session]struct{})
	}
	r.groups[key][s] = struct{}{}

	if r.sessions[s] == nil {
		r.sessions[s] = make(map[string]struct{})
	}
	r.sessions[s][key] = struct{}{}
}

// Leave removes the session from the group. Idempotent; a no-op for
// groups the session never joined.
func (r *Registry) Leave(key string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(key, s)
}

// LeaveAll removes the session from every group it belongs to. Called
// at session close; safe to call for sessions that never joined
// anything.
func (r *Registry) LeaveAll(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.sessions[s] {
		r.leaveLocked(key, s)
	}
	delete(r.sessions, s)
}

func (r *Registry) leaveLocked(key string, s *Session) {
	if members, ok := r.groups[key]; ok {
		delete(members, s)
		if len(members) == 0 {
			delete(r.groups, key)
		}
	}
	if joined, ok := r.sessions[s]; ok {
		delete(joined, key)
	}
}

// Broadcast delivers the event to every current member of the group.
// Delivery is at-most-once with respect to concurrent joins: the
// member set is snapshotted under the read lock and sessions joining
// afterwards do not receive the event. Sessions whose outbound queue
// is full or already closed are skipped and scheduled for close;
// their cleanup is driven by the transport's disconnect signal.
func (r *Registry) Broadcast(key string, event any) {
	r.broadcast(key, nil, event)
}

// BroadcastExcept behaves like Broadcast but skips one session,
// typically the sender.
func (r *Registry) BroadcastExcept(key string, except *Session, event any) {
	r.broadcast(key, except, event)
}

func (r *Registry) broadcast(key string, except *Session, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[realtime] marshal broadcast for %s: %v", key, err)
		return
	}

	for _, s := range r.members(key) {
		if s == except {
			continue
		}
		if !s.enqueue(data) {
			log.Printf("[realtime] dropping session %s: outbound queue unavailable", s.ID)
			s.scheduleClose()
		}
	}
}

// members returns a snapshot of the group's member set.
func (r *Registry) members(key string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	group, ok := r.groups[key]
	if !ok {
		return nil
	}
	snapshot := make([]*Session, 0, len(group))
	for s := range group {
		snapshot = append(snapshot, s)
	}
	return snapshot
}

// Joined reports whether the session is currently a member of the
// group.
func (r *Registry) Joined(key string, s *Session) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.groups[key][s]
	return ok
}

// GroupSize returns the number of sessions in the group.
func (r *Registry) GroupSize(key string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups[key])
}

// SessionCount returns the number of sessions known to the registry.
func (r *Registry) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// GroupCount returns the number of non-empty groups.
func (r *Registry) GroupCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups)
}

// CloseAll schedules every known session for close. Used at shutdown;
// each session's own disconnect path performs its LeaveAll.
func (r *Registry) CloseAll() {
	r.mu.RLock()
	snapshot := make([]*Session, 0, len(r.sessions))
	for s := range r.sessions {
		snapshot = append(snapshot, s)
	}
	r.mu.RUnlock()

	for _, s := range snapshot {
		s.scheduleClose()
	}
}

package realtime

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/example/workspace-live/domain/identity"
)

// fakeConn records writes and close calls without a real socket.
type fakeConn struct {
	mu     sync.Mutex
	closed bool
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func newTestSession(userID string) *Session {
	user := &identity.User{
		ID:    userID,
		Email: userID + "@example.com",
	}
	return NewSession(&fakeConn{}, user, "ws-1")
}

// receiveFrame pops one queued frame from the session without running
// the write loop.
func receiveFrame(t *testing.T, s *Session) []byte {
	t.Helper()
	select {
	case data := <-s.send:
		return data
	default:
		t.Fatal("expected a queued frame, send queue is empty")
		return nil
	}
}

func assertNoFrame(t *testing.T, s *Session) {
	t.Helper()
	select {
	case data := <-s.send:
		t.Fatalf("expected no queued frame, got %s", data)
	default:
	}
}

func TestRegistry_JoinAndLeave(t *testing.T) {
	r := NewRegistry()
	s := newTestSession("user-1")

	r.Join("workspace:ws-1", s)
	if !r.Joined("workspace:ws-1", s) {
		t.Error("Joined() = false after Join")
	}
	if got := r.GroupSize("workspace:ws-1"); got != 1 {
		t.Errorf("GroupSize() = %d, want 1", got)
	}

	// Joining twice must not double-count.
	r.Join("workspace:ws-1", s)
	if got := r.GroupSize("workspace:ws-1"); got != 1 {
		t.Errorf("GroupSize() after duplicate Join = %d, want 1", got)
	}

	r.Leave("workspace:ws-1", s)
	if r.Joined("workspace:ws-1", s) {
		t.Error("Joined() = true after Leave")
	}

	// The last member leaving evicts the group entry.
	if got := r.GroupCount(); got != 0 {
		t.Errorf("GroupCount() after last Leave = %d, want 0", got)
	}

	// Leaving a group the session never joined is a no-op.
	r.Leave("workspace:other", s)
}

func TestRegistry_LeaveAll(t *testing.T) {
	r := NewRegistry()
	s := newTestSession("user-1")
	other := newTestSession("user-2")

	r.Join("workspace:ws-1", s)
	r.Join("user:user-1", s)
	r.Join("chat:workspace:ws-1", s)
	r.Join("workspace:ws-1", other)

	r.LeaveAll(s)

	if r.Joined("workspace:ws-1", s) || r.Joined("user:user-1", s) || r.Joined("chat:workspace:ws-1", s) {
		t.Error("session still a member of a group after LeaveAll")
	}
	if !r.Joined("workspace:ws-1", other) {
		t.Error("LeaveAll removed an unrelated session")
	}
	if got := r.SessionCount(); got != 1 {
		t.Errorf("SessionCount() = %d, want 1", got)
	}

	// Only the shared group survives; per-session groups are evicted.
	if got := r.GroupCount(); got != 1 {
		t.Errorf("GroupCount() = %d, want 1", got)
	}

	// LeaveAll for an unknown session is safe.
	r.LeaveAll(newTestSession("user-3"))
}

func TestRegistry_Broadcast(t *testing.T) {
	r := NewRegistry()
	a := newTestSession("user-a")
	b := newTestSession("user-b")
	outsider := newTestSession("user-c")

	r.Join("workspace:ws-1", a)
	r.Join("workspace:ws-1", b)
	r.Join("workspace:ws-2", outsider)

	r.Broadcast("workspace:ws-1", map[string]string{"type": "workspace_update"})

	for _, s := range []*Session{a, b} {
		var got map[string]string
		if err := json.Unmarshal(receiveFrame(t, s), &got); err != nil {
			t.Fatalf("unmarshal broadcast frame: %v", err)
		}
		if got["type"] != "workspace_update" {
			t.Errorf("frame type = %q, want %q", got["type"], "workspace_update")
		}
		// Exactly one frame per member.
		assertNoFrame(t, s)
	}
	assertNoFrame(t, outsider)
}

func TestRegistry_BroadcastExcept(t *testing.T) {
	r := NewRegistry()
	sender := newTestSession("user-a")
	peer := newTestSession("user-b")

	r.Join("chat:workspace:ws-1", sender)
	r.Join("chat:workspace:ws-1", peer)

	r.BroadcastExcept("chat:workspace:ws-1", sender, map[string]string{"type": "typing_indicator"})

	receiveFrame(t, peer)
	assertNoFrame(t, sender)
}

func TestRegistry_BroadcastEmptyGroup(t *testing.T) {
	r := NewRegistry()
	// Must not panic or create the group.
	r.Broadcast("workspace:nobody", map[string]string{"type": "noop"})
	if got := r.GroupCount(); got != 0 {
		t.Errorf("GroupCount() = %d, want 0", got)
	}
}

func TestRegistry_BroadcastFullQueueSchedulesClose(t *testing.T) {
	r := NewRegistry()
	slow := newTestSession("user-slow")
	r.Join("workspace:ws-1", slow)

	for i := 0; i < sendQueueSize; i++ {
		if !slow.enqueue([]byte("{}")) {
			t.Fatalf("enqueue failed before queue was full (frame %d)", i)
		}
	}

	r.Broadcast("workspace:ws-1", map[string]string{"type": "overflow"})

	select {
	case <-slow.Done():
	default:
		t.Error("session with full queue was not scheduled for close")
	}
	if !slow.conn.(*fakeConn).isClosed() {
		t.Error("underlying connection was not closed")
	}
}

func TestRegistry_CloseAll(t *testing.T) {
	r := NewRegistry()
	a := newTestSession("user-a")
	b := newTestSession("user-b")
	r.Join("workspace:ws-1", a)
	r.Join("user:user-b", b)

	r.CloseAll()

	for _, s := range []*Session{a, b} {
		select {
		case <-s.Done():
		default:
			t.Errorf("session %s not closed by CloseAll", s.ID)
		}
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	const workers = 16

	var wg sync.WaitGroup
	sessions := make([]*Session, workers)
	for i := range sessions {
		sessions[i] = newTestSession("user-1")
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Join("workspace:ws-1", s)
				r.Broadcast("workspace:ws-1", map[string]string{"type": "tick"})
				r.Leave("workspace:ws-1", s)
			}
			r.LeaveAll(s)
		}(sessions[i])
	}
	wg.Wait()

	if got := r.GroupCount(); got != 0 {
		t.Errorf("GroupCount() after concurrent churn = %d, want 0", got)
	}
	if got := r.SessionCount(); got != 0 {
		t.Errorf("SessionCount() after concurrent churn = %d, want 0", got)
	}
}

package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"github.com/example/workspace-live/domain/identity"
)

// sendQueueSize bounds the per-session outbound queue. A session that
// cannot drain this many frames is considered dead and dropped.
const sendQueueSize = 256

// wireConn is the subset of the WebSocket connection the session
// writes to. Narrowed for tests.
type wireConn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Session is one live WebSocket connection and its identity and
// scope. All outbound writes go through the send queue and are
// serialized by a single writer goroutine.
type Session struct {
	ID          string
	UserID      string
	UserName    string
	UserAvatar  string
	WorkspaceID string

	// Chat connections carry a room scope; empty otherwise.
	RoomType string
	RoomID   string

	conn      wireConn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewSession creates a session for an authenticated user connected to
// a workspace scope.
func NewSession(conn wireConn, user *identity.User, workspaceID string) *Session {
	return &Session{
		ID:          uuid.New().String(),
		UserID:      user.ID,
		UserName:    user.DisplayName(),
		UserAvatar:  user.AvatarURL,
		WorkspaceID: workspaceID,
		conn:        conn,
		send:        make(chan []byte, sendQueueSize),
		done:        make(chan struct{}),
	}
}

// NewChatSession creates a session additionally scoped to a chat room.
func NewChatSession(conn wireConn, user *identity.User, workspaceID, roomType, roomID string) *Session {
	s := NewSession(conn, user, workspaceID)
	s.RoomType = roomType
	s.RoomID = roomID
	return s
}

// IsChat reports whether the session is bound to a chat room.
func (s *Session) IsChat() bool {
	return s.RoomType != ""
}

// enqueue queues a frame for delivery. It never blocks: a full queue
// or a closed session reports failure and the frame is dropped.
func (s *Session) enqueue(data []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.send <- data:
		return true
	case <-s.done:
		return false
	default:
		return false
	}
}

// sendEvent marshals and queues a single event for this session only.
func (s *Session) sendEvent(event any) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[realtime] marshal event for session %s: %v", s.ID, err)
		return
	}
	if !s.enqueue(data) {
		log.Printf("[realtime] session %s send queue unavailable", s.ID)
	}
}

// WriteLoop drains the send queue to the socket until the session is
// closed. Must run in its own goroutine; it is the only writer to the
// connection.
func (s *Session) WriteLoop() {
	for {
		select {
		case data := <-s.send:
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.scheduleClose()
				return
			}
		case <-s.done:
			return
		}
	}
}

// scheduleClose marks the session closed and closes the underlying
// socket, which unblocks the read loop. Safe to call repeatedly and
// from any goroutine; group cleanup happens on the read loop's exit
// path.
func (s *Session) scheduleClose() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.conn != nil {
			_ = s.conn.Close()
		}
	})
}

// Close terminates the session.
func (s *Session) Close() {
	s.scheduleClose()
}

// Done is closed when the session has been shut down.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

package realtime

import (
	"encoding/json"
	"time"
)

// Inbound frame kinds. Unknown type tags decode to frameUnknown and
// take the log-and-ignore path.
type frameKind int

const (
	frameUnknown frameKind = iota
	framePing
	frameSubscribe
	frameChatMessage
	frameTypingStart
	frameTypingStop
)

// inboundFrame is the superset of all client frames. The Type tag
// selects which fields are meaningful.
type inboundFrame struct {
	Type      string          `json:"type"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
	Channels  []string        `json:"channels,omitempty"`
	Message   string          `json:"message,omitempty"`
}

func (f *inboundFrame) kind() frameKind {
	switch f.Type {
	case "ping":
		return framePing
	case "subscribe":
		return frameSubscribe
	case "chat_message":
		return frameChatMessage
	case "typing_start":
		return frameTypingStart
	case "typing_stop":
		return frameTypingStop
	default:
		return frameUnknown
	}
}

// pongEvent echoes the client's ping timestamp verbatim.
type pongEvent struct {
	Type      string          `json:"type"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// updateEvent is the shared shape of workspace_update, project_update,
// timesheet_update and time_entry_update frames.
type updateEvent struct {
	Type      string          `json:"type"`
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
}

// userNotificationEvent is a personal notification frame.
type userNotificationEvent struct {
	Type             string          `json:"type"`
	NotificationType string          `json:"notification_type"`
	Message          string          `json:"message"`
	Data             json.RawMessage `json:"data,omitempty"`
	Timestamp        time.Time       `json:"timestamp"`
}

// chatMessagePayload is the canonical form of a persisted message.
type chatMessagePayload struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	UserAvatar string    `json:"user_avatar"`
	Timestamp  time.Time `json:"timestamp"`
	RoomType   string    `json:"room_type"`
	RoomID     string    `json:"room_id"`
}

// chatMessageEvent carries a persisted message to a room.
type chatMessageEvent struct {
	Type    string             `json:"type"`
	Message chatMessagePayload `json:"message"`
}

// typingIndicatorEvent reflects another member's typing state.
type typingIndicatorEvent struct {
	Type     string `json:"type"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	IsTyping bool   `json:"is_typing"`
}

// errorEvent reports a failed operation back to the sender.
type errorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

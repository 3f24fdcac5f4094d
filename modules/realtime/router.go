package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	chatdomain "github.com/example/workspace-live/domain/chat"
)

// Authorizer answers access-control questions. Implemented by the
// membership oracle.
type Authorizer interface {
	HasWorkspaceAccess(ctx context.Context, userID, workspaceID string) (bool, error)
	HasProjectAccess(ctx context.Context, userID, workspaceID, projectID string) (bool, error)
}

// ChatStore durably stores chat messages before they are broadcast.
type ChatStore interface {
	SaveMessage(ctx context.Context, roomType, roomID, workspaceID, userID, content string) (*chatdomain.Message, error)
}

// Router classifies inbound frames and dispatches them. Router-level
// failures are logged and never close the connection.
type Router struct {
	registry *Registry
	authz    Authorizer
	store    ChatStore
	logger   *slog.Logger
}

// NewRouter creates a router over the given registry and
// collaborators.
func NewRouter(registry *Registry, authz Authorizer, store ChatStore, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		registry: registry,
		authz:    authz,
		store:    store,
		logger:   logger,
	}
}

// HandleFrame processes one inbound frame from the session. Frames
// within a session are handled in arrival order by the caller's read
// loop.
func (r *Router) HandleFrame(ctx context.Context, s *Session, raw []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		r.logger.Error("invalid frame received", "sessionID", s.ID, "error", err)
		return
	}

	switch frame.kind() {
	case framePing:
		s.sendEvent(pongEvent{Type: "pong", Timestamp: frame.Timestamp})
	case frameSubscribe:
		r.handleSubscribe(ctx, s, frame.Channels)
	case frameChatMessage:
		r.handleChatMessage(ctx, s, frame.Message)
	case frameTypingStart:
		r.handleTyping(s, true)
	case frameTypingStop:
		r.handleTyping(s, false)
	default:
		r.logger.Warn("unknown frame type", "sessionID", s.ID, "type", frame.Type)
	}
}

// handleSubscribe resolves each requested channel to a group key,
// re-running the relevant authorization check before joining.
// Unauthorized or unrecognized channels are skipped silently.
func (r *Router) handleSubscribe(ctx context.Context, s *Session, channels []string) {
	for _, channel := range channels {
		switch {
		case strings.HasPrefix(channel, "project_"):
			projectID := strings.TrimPrefix(channel, "project_")
			if projectID == "" {
				continue
			}
			ok, err := r.authz.HasProjectAccess(ctx, s.UserID, s.WorkspaceID, projectID)
			if err != nil {
				r.logger.Error("project access check failed", "sessionID", s.ID, "projectID", projectID, "error", err)
				continue
			}
			if ok {
				r.registry.Join(ProjectGroup(projectID), s)
			}
		case strings.HasPrefix(channel, "timesheet_"):
			// Workspace scope was authorized at connect time.
			r.registry.Join(TimesheetGroup(s.WorkspaceID), s)
		default:
			r.logger.Debug("ignoring unrecognized channel", "sessionID", s.ID, "channel", channel)
		}
	}
}

// handleChatMessage persists the message and broadcasts its canonical
// form to the room, sender included. Blank content is dropped; a
// failed save suppresses the broadcast and reports an error frame to
// the sender only.
func (r *Router) handleChatMessage(ctx context.Context, s *Session, content string) {
	if !s.IsChat() {
		r.logger.Warn("chat_message on non-chat session", "sessionID", s.ID)
		return
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return
	}

	msg, err := r.store.SaveMessage(ctx, s.RoomType, s.RoomID, s.WorkspaceID, s.UserID, content)
	if err != nil {
		r.logger.Error("failed to save chat message", "sessionID", s.ID, "room", s.RoomID, "error", err)
		s.sendEvent(errorEvent{Type: "error", Error: "message could not be saved"})
		return
	}

	r.registry.Broadcast(ChatRoomGroup(s.RoomType, s.RoomID), chatMessageEvent{
		Type: "chat_message",
		Message: chatMessagePayload{
			ID:         msg.ID,
			Content:    msg.Content,
			UserID:     s.UserID,
			UserName:   s.UserName,
			UserAvatar: s.UserAvatar,
			Timestamp:  msg.CreatedAt,
			RoomType:   s.RoomType,
			RoomID:     s.RoomID,
		},
	})
}

// handleTyping broadcasts the typing state to the room, excluding the
// sender.
func (r *Router) handleTyping(s *Session, isTyping bool) {
	if !s.IsChat() {
		r.logger.Warn("typing indicator on non-chat session", "sessionID", s.ID)
		return
	}

	r.registry.BroadcastExcept(ChatRoomGroup(s.RoomType, s.RoomID), s, typingIndicatorEvent{
		Type:     "typing_indicator",
		UserID:   s.UserID,
		UserName: s.UserName,
		IsTyping: isTyping,
	})
}

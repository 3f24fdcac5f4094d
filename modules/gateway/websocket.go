package gateway

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/contrib/websocket"

	"github.com/example/workspace-live/modules/auth"
	"github.com/example/workspace-live/modules/realtime"
)

// handleLiveUpdates serves ws://.../ws/live-updates/{workspace_id}/.
// The session joins its personal group and the workspace group.
func (m *GatewayModule) handleLiveUpdates(c *websocket.Conn) {
	ctx := context.Background()
	workspaceID := c.Params("workspaceID")

	user, err := m.authPort.Authenticate(ctx, c.Query("token"))
	if err != nil {
		if !errors.Is(err, auth.ErrUnauthenticated) {
			slog.Error("authentication error", "error", err)
		}
		_ = c.Close()
		return
	}

	if workspaceID == "" {
		_ = c.Close()
		return
	}

	ok, err := m.authz.HasWorkspaceAccess(ctx, user.ID, workspaceID)
	if err != nil {
		slog.Error("workspace access check failed", "userID", user.ID, "workspaceID", workspaceID, "error", err)
		_ = c.Close()
		return
	}
	if !ok {
		_ = c.Close()
		return
	}

	session := realtime.NewSession(c, user, workspaceID)
	slog.Info("websocket connected", "userID", user.ID, "workspaceID", workspaceID)

	m.runSession(ctx, c, session,
		realtime.UserGroup(user.ID),
		realtime.WorkspaceGroup(workspaceID),
	)
}

// handleChat serves ws://.../ws/chat/{workspace_id}/{room_type}/{room_id}/.
// Room authorization depends on the room type; the session joins its
// personal group and the room group.
func (m *GatewayModule) handleChat(c *websocket.Conn) {
	ctx := context.Background()
	workspaceID := c.Params("workspaceID")
	roomType := c.Params("roomType")
	roomID := c.Params("roomID")

	user, err := m.authPort.Authenticate(ctx, c.Query("token"))
	if err != nil {
		if !errors.Is(err, auth.ErrUnauthenticated) {
			slog.Error("authentication error", "error", err)
		}
		_ = c.Close()
		return
	}

	if workspaceID == "" || roomType == "" || roomID == "" {
		_ = c.Close()
		return
	}

	ok, err := m.authz.HasWorkspaceAccess(ctx, user.ID, workspaceID)
	if err != nil || !ok {
		if err != nil {
			slog.Error("workspace access check failed", "userID", user.ID, "workspaceID", workspaceID, "error", err)
		}
		_ = c.Close()
		return
	}

	ok, err = checkRoomAccess(ctx, m.authz, user.ID, workspaceID, roomType, roomID)
	if err != nil || !ok {
		if err != nil {
			slog.Error("room access check failed", "userID", user.ID, "room", roomType+"/"+roomID, "error", err)
		}
		_ = c.Close()
		return
	}

	session := realtime.NewChatSession(c, user, workspaceID, roomType, roomID)
	slog.Info("chat connected", "userID", user.ID, "room", roomType+"/"+roomID)

	m.runSession(ctx, c, session,
		realtime.UserGroup(user.ID),
		realtime.ChatRoomGroup(roomType, roomID),
	)
}

// runSession registers the session in its base groups, starts the
// writer, and runs the read loop until disconnect. Cleanup is
// unconditional: any exit removes the session from every group it
// joined.
func (m *GatewayModule) runSession(ctx context.Context, c *websocket.Conn, session *realtime.Session, groups ...string) {
	registry := m.rt.Registry()
	router := m.rt.Router()

	for _, group := range groups {
		registry.Join(group, session)
	}

	go session.WriteLoop()

	defer func() {
		registry.LeaveAll(session)
		session.Close()
		slog.Info("websocket disconnected", "sessionID", session.ID, "userID", session.UserID)
	}()

	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				slog.Error("websocket read error", "sessionID", session.ID, "error", err)
			}
			return
		}
		// Frames are processed in arrival order for this session.
		router.HandleFrame(ctx, session, raw)
	}
}

package gateway

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/workspace-live/events"
	"github.com/example/workspace-live/modules/auth"
)

// ingestEventRequest is the envelope the business backend posts to
// publish a live event. The event tag selects which fields apply.
type ingestEventRequest struct {
	Event            string          `json:"event"`
	WorkspaceID      string          `json:"workspace_id,omitempty"`
	UserID           string          `json:"user_id,omitempty"`
	ProjectID        string          `json:"project_id,omitempty"`
	EventType        string          `json:"event_type,omitempty"`
	NotificationType string          `json:"notification_type,omitempty"`
	Message          string          `json:"message,omitempty"`
	Data             json.RawMessage `json:"data,omitempty"`
}

// handleIngestEvent publishes a business event onto the EventBus. The
// realtime module consumes it and fans it out to the matching group.
func (m *GatewayModule) handleIngestEvent(c *fiber.Ctx) error {
	var req ingestEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	var err error
	switch req.Event {
	case "workspace_update":
		if req.WorkspaceID == "" {
			return badIngest(c, "workspace_id is required")
		}
		err = events.WorkspaceUpdatedV1.Publish(m.eventBus, events.WorkspaceUpdatedEvent{
			WorkspaceID: req.WorkspaceID,
			EventType:   req.EventType,
			Data:        req.Data,
		}, nil)

	case "user_notification":
		if req.UserID == "" {
			return badIngest(c, "user_id is required")
		}
		err = events.UserNotifiedV1.Publish(m.eventBus, events.UserNotifiedEvent{
			UserID:           req.UserID,
			NotificationType: req.NotificationType,
			Message:          req.Message,
			Data:             req.Data,
			Timestamp:        time.Now().UTC(),
		}, nil)

	case "project_update":
		if req.ProjectID == "" {
			return badIngest(c, "project_id is required")
		}
		err = events.ProjectUpdatedV1.Publish(m.eventBus, events.ProjectUpdatedEvent{
			ProjectID: req.ProjectID,
			EventType: req.EventType,
			Data:      req.Data,
		}, nil)

	case "timesheet_update":
		if req.WorkspaceID == "" {
			return badIngest(c, "workspace_id is required")
		}
		err = events.TimesheetUpdatedV1.Publish(m.eventBus, events.TimesheetUpdatedEvent{
			WorkspaceID: req.WorkspaceID,
			EventType:   req.EventType,
			Data:        req.Data,
		}, nil)

	case "time_entry_update":
		if req.WorkspaceID == "" {
			return badIngest(c, "workspace_id is required")
		}
		err = events.TimeEntryUpdatedV1.Publish(m.eventBus, events.TimeEntryUpdatedEvent{
			WorkspaceID: req.WorkspaceID,
			EventType:   req.EventType,
			Data:        req.Data,
		}, nil)

	default:
		return badIngest(c, "unknown event: "+req.Event)
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to publish event",
		})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "accepted",
	})
}

func badIngest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

// handleChatHistory returns recent messages for a room the caller may
// access (GET /api/v1/chat/:workspaceID/:roomType/:roomID/history).
func (m *GatewayModule) handleChatHistory(c *fiber.Ctx) error {
	workspaceID := c.Params("workspaceID")
	roomType := c.Params("roomType")
	roomID := c.Params("roomID")

	token := bearerToken(c)
	user, err := m.authPort.Authenticate(c.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid token",
			})
		}
		return fiber.ErrInternalServerError
	}

	ok, err := m.authz.HasWorkspaceAccess(c.Context(), user.ID, workspaceID)
	if err != nil {
		return fiber.ErrInternalServerError
	}
	if ok {
		ok, err = checkRoomAccess(c.Context(), m.authz, user.ID, workspaceID, roomType, roomID)
		if err != nil {
			return fiber.ErrInternalServerError
		}
	}
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "access denied",
		})
	}

	limit := c.QueryInt("limit", 50)
	messages, err := m.history.History(c.Context(), roomType, roomID, workspaceID, limit)
	if err != nil {
		return fiber.ErrInternalServerError
	}

	return c.JSON(fiber.Map{
		"room_type": roomType,
		"room_id":   roomID,
		"messages":  messages,
		"total":     len(messages),
	})
}

// bearerToken extracts the credential from the Authorization header,
// falling back to the token query parameter.
func bearerToken(c *fiber.Ctx) string {
	header := c.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}

// handleHealthCheck handles health check requests (GET /health).
func (m *GatewayModule) handleHealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "healthy",
		"service":  "workspace-live",
		"sessions": m.rt.Registry().SessionCount(),
	})
}

// Package events defines the EventBus events carried between the
// business-logic producers and the realtime fan-out consumer.
package events

import (
	"encoding/json"
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// WorkspaceUpdatedEvent is published when anything in a workspace
// changes that connected clients should see.
type WorkspaceUpdatedEvent struct {
	WorkspaceID string          `json:"workspace_id"`
	EventType   string          `json:"event_type"`
	Data        json.RawMessage `json:"data"`
}

// UserNotifiedEvent is a personal notification for a single user.
type UserNotifiedEvent struct {
	UserID           string          `json:"user_id"`
	NotificationType string          `json:"notification_type"`
	Message          string          `json:"message"`
	Data             json.RawMessage `json:"data,omitempty"`
	Timestamp        time.Time       `json:"timestamp"`
}

// ProjectUpdatedEvent is published for changes scoped to one project.
type ProjectUpdatedEvent struct {
	ProjectID string          `json:"project_id"`
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
}

// TimesheetUpdatedEvent is published when a timesheet in a workspace
// changes.
type TimesheetUpdatedEvent struct {
	WorkspaceID string          `json:"workspace_id"`
	EventType   string          `json:"event_type"`
	Data        json.RawMessage `json:"data"`
}

// TimeEntryUpdatedEvent is published when a time entry in a workspace
// changes.
type TimeEntryUpdatedEvent struct {
	WorkspaceID string          `json:"workspace_id"`
	EventType   string          `json:"event_type"`
	Data        json.RawMessage `json:"data"`
}

// Event definitions emitted by the gateway's ingest endpoint.
var (
	WorkspaceUpdatedV1 = helper.EventDefinition[WorkspaceUpdatedEvent](
		"gateway",
		"WorkspaceUpdated",
		"v1",
	)

	UserNotifiedV1 = helper.EventDefinition[UserNotifiedEvent](
		"gateway",
		"UserNotified",
		"v1",
	)

	ProjectUpdatedV1 = helper.EventDefinition[ProjectUpdatedEvent](
		"gateway",
		"ProjectUpdated",
		"v1",
	)

	TimesheetUpdatedV1 = helper.EventDefinition[TimesheetUpdatedEvent](
		"gateway",
		"TimesheetUpdated",
		"v1",
	)

	TimeEntryUpdatedV1 = helper.EventDefinition[TimeEntryUpdatedEvent](
		"gateway",
		"TimeEntryUpdated",
		"v1",
	)
)

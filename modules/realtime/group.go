package realtime

// Group key namespaces. Group existence is implicit in membership:
// keys are plain strings, entries spring into existence on first join
// and are evicted when the last member leaves.

// WorkspaceGroup is the broadcast scope for workspace-wide updates.
func WorkspaceGroup(workspaceID string) string {
	return "workspace:" + workspaceID
}

// UserGroup is the personal notification scope for one user.
func UserGroup(userID string) string {
	return "user:" + userID
}

// ProjectGroup is the broadcast scope for one project.
func ProjectGroup(projectID string) string {
	return "project:" + projectID
}

// TimesheetGroup is the broadcast scope for timesheet and time-entry
// updates within a workspace.
func TimesheetGroup(workspaceID string) string {
	return "timesheet:" + workspaceID
}

// ChatRoomGroup is the broadcast scope for one chat room.
func ChatRoomGroup(roomType, roomID string) string {
	return "chat:" + roomType + ":" + roomID
}

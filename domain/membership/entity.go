package membership

import "time"

// Membership links a user to a workspace. Only active memberships
// grant access.
type Membership struct {
	ID          string `gorm:"primaryKey;type:text"`
	UserID      string `gorm:"index:idx_memberships_user_workspace;not null;type:text"`
	WorkspaceID string `gorm:"index:idx_memberships_user_workspace;not null;type:text"`
	Role        string `gorm:"type:text"`
	IsActive    bool   `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for the Membership entity.
func (Membership) TableName() string {
	return "memberships"
}

// Project is a project within a workspace.
type Project struct {
	ID          string `gorm:"primaryKey;type:text"`
	WorkspaceID string `gorm:"index;not null;type:text"`
	Name        string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for the Project entity.
func (Project) TableName() string {
	return "projects"
}

// ProjectMember is an explicit per-project membership, used for
// projects shared outside their owning workspace.
type ProjectMember struct {
	ID        string `gorm:"primaryKey;type:text"`
	ProjectID string `gorm:"index:idx_project_members_project_user;not null;type:text"`
	UserID    string `gorm:"index:idx_project_members_project_user;not null;type:text"`
	CreatedAt time.Time
}

// TableName returns the table name for the ProjectMember entity.
func (ProjectMember) TableName() string {
	return "project_members"
}

package membership

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "github.com/example/workspace-live/domain/membership"
)

// Repository answers membership questions from the relational store.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

// HasActiveMembership reports whether the user holds an active
// membership in the workspace.
func (r *Repository) HasActiveMembership(ctx context.Context, userID, workspaceID string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&domain.Membership{}).
		Where("user_id = ? AND workspace_id = ? AND is_active = ?", userID, workspaceID, true).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// FindProject returns the project with the given id.
func (r *Repository) FindProject(ctx context.Context, projectID string) (*domain.Project, error) {
	var project domain.Project
	result := r.db.WithContext(ctx).First(&project, "id = ?", projectID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &project, nil
}

// IsProjectMember reports whether the user has an explicit project
// membership.
func (r *Repository) IsProjectMember(ctx context.Context, userID, projectID string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&domain.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

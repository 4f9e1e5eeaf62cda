package port

import (
	"context"

	"taskapp/internal/core/domain"
)

// TaskRepository is the task-ownership collaborator. Account deletion
// sizes the cascade through CountByOwner before the user store removes
// the tasks and the account row together.
type TaskRepository interface {
	Create(ctx context.Context, task domain.Task) (domain.Task, error)
	CountByOwner(ctx context.Context, ownerID int) (int, error)
	DeleteAllByOwner(ctx context.Context, ownerID int) error
}

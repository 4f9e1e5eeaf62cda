package repository

import (
	"context"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	database "taskapp/internal/adapter/database/postgres"
	"taskapp/internal/core/domain"
	"taskapp/internal/core/port"
)

type TaskRepository struct {
	db *database.DB
}

func NewTaskRepository(db *database.DB) port.TaskRepository {
	return &TaskRepository{db: db}
}

func (tr *TaskRepository) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	if task.UUID == uuid.Nil {
		task.UUID = uuid.New()
	}

	query := tr.db.QueryBuilder.Insert("tasks").
		Columns("uuid", "owner_id", "title", "completed", "created_at", "updated_at").
		Values(task.UUID.String(), task.OwnerID, task.Title, task.Completed, task.CreatedAt, task.UpdatedAt).
		Suffix("RETURNING id")

	stmt, args, err := query.ToSql()

	if err != nil {
		return domain.Task{}, err
	}

	if err := tr.db.QueryRow(ctx, stmt, args...).Scan(&task.ID); err != nil {
		slog.Error("Error creating task", "error", err)
		return domain.Task{}, err
	}

	return task, nil
}

func (tr *TaskRepository) CountByOwner(ctx context.Context, ownerID int) (int, error) {
	query := tr.db.QueryBuilder.Select("COUNT(*)").
		From("tasks").
		Where(sq.Eq{"owner_id": ownerID})

	stmt, args, err := query.ToSql()

	if err != nil {
		return 0, err
	}

	var count int

	if err := tr.db.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (tr *TaskRepository) DeleteAllByOwner(ctx context.Context, ownerID int) error {
	query := tr.db.QueryBuilder.Delete("tasks").
		Where(sq.Eq{"owner_id": ownerID})

	stmt, args, err := query.ToSql()

	if err != nil {
		return err
	}

	if _, err := tr.db.Exec(ctx, stmt, args...); err != nil {
		slog.Error("Error deleting tasks by owner", "error", err)
		return err
	}

	return nil
}

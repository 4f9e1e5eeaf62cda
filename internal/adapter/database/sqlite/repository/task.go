package repository

import (
	"context"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"taskapp/internal/adapter/database/sqlite"
	"taskapp/internal/core/domain"
	"taskapp/internal/core/port"
	tel "taskapp/internal/core/telemetry"
)

// TaskRepository is the ownership index consumed by the account cascade.
type TaskRepository struct {
	db        *sqlite.DB
	telemetry port.Telemetry
}

func NewTaskRepository(db *sqlite.DB, telemetry port.Telemetry) port.TaskRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TaskRepository{db: db, telemetry: telemetry}
}

func (tr *TaskRepository) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	if task.UUID == uuid.Nil {
		task.UUID = uuid.New()
	}

	query := tr.db.QueryBuilder.Insert("tasks").
		Columns("uuid", "owner_id", "title", "completed", "created_at", "updated_at").
		Values(task.UUID.String(), task.OwnerID, task.Title, task.Completed, task.CreatedAt, task.UpdatedAt)

	stmt, args, err := query.ToSql()

	if err != nil {
		return domain.Task{}, err
	}

	result, err := tr.db.ExecContext(ctx, stmt, args...)

	if err != nil {
		slog.Error("Error creating task", "error", err)
		return domain.Task{}, err
	}

	id, err := result.LastInsertId()

	if err != nil {
		return domain.Task{}, err
	}

	task.ID = int(id)

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

	if err := tr.db.QueryRowContext(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (tr *TaskRepository) DeleteAllByOwner(ctx context.Context, ownerID int) error {
	start := time.Now()

	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "DeleteAllByOwner", "task", nil)
	defer span.End()

	err := tr.deleteAllByOwner(ctx, ownerID)

	tr.telemetry.RecordRepositoryOperation(ctx, "DeleteAllByOwner", "task", time.Since(start), err)

	return err
}

func (tr *TaskRepository) deleteAllByOwner(ctx context.Context, ownerID int) error {
	query := tr.db.QueryBuilder.Delete("tasks").
		Where(sq.Eq{"owner_id": ownerID})

	stmt, args, err := query.ToSql()

	if err != nil {
		return err
	}

	if _, err := tr.db.ExecContext(ctx, stmt, args...); err != nil {
		slog.Error("Error deleting tasks by owner", "error", err)
		return err
	}

	return nil
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	database "taskapp/internal/adapter/database/postgres"
	"taskapp/internal/core/domain"
	"taskapp/internal/core/port"
)

const pgUniqueViolation = "23505"

var userColumns = []string{
	"id", "uuid", "name", "email", "age",
	"encrypted_password", "tokens", "avatar", "created_at", "updated_at",
}

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) port.UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		user      domain.User
		uid       string
		tokensRaw []byte
	)

	err := row.Scan(
		&user.ID, &uid, &user.Name, &user.Email, &user.Age,
		&user.EncryptedPassword, &tokensRaw, &user.Avatar,
		&user.CreatedAt, &user.UpdatedAt,
	)

	if err != nil {
		return domain.User{}, err
	}

	user.UUID, err = uuid.Parse(uid)

	if err != nil {
		return domain.User{}, err
	}

	if err := json.Unmarshal(tokensRaw, &user.Tokens); err != nil {
		return domain.User{}, err
	}

	return user, nil
}

func (ur *UserRepository) getBy(ctx context.Context, pred sq.Eq) (domain.User, error) {
	query := ur.db.QueryBuilder.Select(userColumns...).
		From("users").
		Where(pred).
		Limit(1)

	stmt, args, err := query.ToSql()

	if err != nil {
		return domain.User{}, err
	}

	return scanUser(ur.db.QueryRow(ctx, stmt, args...))
}

func (ur *UserRepository) GetByUUID(ctx context.Context, uid string) (domain.User, error) {
	return ur.getBy(ctx, sq.Eq{"uuid": uid})
}

func (ur *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return ur.getBy(ctx, sq.Eq{"email": email})
}

func (ur *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	tokens, err := json.Marshal(user.Tokens)

	if err != nil {
		return domain.User{}, err
	}

	if user.Tokens == nil {
		tokens = []byte("[]")
	}

	query := ur.db.QueryBuilder.Insert("users").
		Columns("uuid", "name", "email", "age", "encrypted_password", "tokens", "avatar", "created_at", "updated_at").
		Values(user.UUID.String(), user.Name, user.Email, user.Age,
			user.EncryptedPassword, string(tokens), user.Avatar, user.CreatedAt, user.UpdatedAt)

	stmt, args, err := query.ToSql()

	if err != nil {
		return domain.User{}, err
	}

	if _, err := ur.db.Exec(ctx, stmt, args...); err != nil {
		slog.Error("Error creating user", "error", err)
		return domain.User{}, mapUniqueEmail(err)
	}

	return ur.GetByUUID(ctx, user.UUID.String())
}

func (ur *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	query := ur.db.QueryBuilder.Update("users").
		Set("name", user.Name).
		Set("email", user.Email).
		Set("age", user.Age).
		Set("encrypted_password", user.EncryptedPassword).
		Set("updated_at", user.UpdatedAt).
		Where(sq.Eq{"id": user.ID})

	stmt, args, err := query.ToSql()

	if err != nil {
		return domain.User{}, err
	}

	if _, err := ur.db.Exec(ctx, stmt, args...); err != nil {
		slog.Error("Error updating user", "error", err)
		return domain.User{}, mapUniqueEmail(err)
	}

	return ur.GetByUUID(ctx, user.UUID.String())
}

func (ur *UserRepository) UpdateAvatar(ctx context.Context, userID int, avatar []byte) error {
	query := ur.db.QueryBuilder.Update("users").
		Set("avatar", avatar).
		Where(sq.Eq{"id": userID})

	stmt, args, err := query.ToSql()

	if err != nil {
		return err
	}

	_, err = ur.db.Exec(ctx, stmt, args...)

	return err
}

func (ur *UserRepository) AppendToken(ctx context.Context, userID int, token string) error {
	return ur.mutateTokens(ctx, userID, func(tokens []string) []string {
		return append(tokens, token)
	})
}

func (ur *UserRepository) RemoveToken(ctx context.Context, userID int, token string) error {
	return ur.mutateTokens(ctx, userID, func(tokens []string) []string {
		remaining := tokens[:0]

		for _, t := range tokens {
			if t != token {
				remaining = append(remaining, t)
			}
		}

		return remaining
	})
}

func (ur *UserRepository) ClearTokens(ctx context.Context, userID int) error {
	return ur.mutateTokens(ctx, userID, func([]string) []string {
		return nil
	})
}

// mutateTokens locks the account row for the duration of the
// read-modify-write so concurrent session changes serialize.
func (ur *UserRepository) mutateTokens(ctx context.Context, userID int, mutate func([]string) []string) error {
	tx, err := ur.db.Begin(ctx)

	if err != nil {
		return err
	}

	defer tx.Rollback(ctx)

	selectStmt, selectArgs, err := ur.db.QueryBuilder.Select("tokens").
		From("users").
		Where(sq.Eq{"id": userID}).
		Suffix("FOR UPDATE").
		ToSql()

	if err != nil {
		return err
	}

	var tokensRaw []byte

	if err := tx.QueryRow(ctx, selectStmt, selectArgs...).Scan(&tokensRaw); err != nil {
		return err
	}

	var tokens []string

	if err := json.Unmarshal(tokensRaw, &tokens); err != nil {
		return err
	}

	mutated := mutate(tokens)

	if mutated == nil {
		mutated = []string{}
	}

	encoded, err := json.Marshal(mutated)

	if err != nil {
		return err
	}

	updateStmt, updateArgs, err := ur.db.QueryBuilder.Update("users").
		Set("tokens", string(encoded)).
		Where(sq.Eq{"id": userID}).
		ToSql()

	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, updateStmt, updateArgs...); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// DeleteAccount removes the task cascade and the account row in one
// transaction so a failure on either leg leaves both tables untouched.
func (ur *UserRepository) DeleteAccount(ctx context.Context, user domain.User) error {
	tx, err := ur.db.Begin(ctx)

	if err != nil {
		return err
	}

	defer tx.Rollback(ctx)

	tasksStmt, tasksArgs, err := ur.db.QueryBuilder.Delete("tasks").
		Where(sq.Eq{"owner_id": user.ID}).
		ToSql()

	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, tasksStmt, tasksArgs...); err != nil {
		slog.Error("Error cascading task deletion", "error", err)
		return &domain.DependencyError{Dependency: "task store", Err: err}
	}

	userStmt, userArgs, err := ur.db.QueryBuilder.Delete("users").
		Where(sq.Eq{"uuid": user.UUID.String()}).
		ToSql()

	if err != nil {
		return err
	}

	result, err := tx.Exec(ctx, userStmt, userArgs...)

	if err != nil {
		slog.Error("Error deleting user", "error", err)
		return err
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "user"}
	}

	return tx.Commit(ctx)
}

func mapUniqueEmail(err error) error {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return domain.NewValidationError(domain.FieldViolation{
			Field:   "email",
			Message: "Email is already in use",
		})
	}

	return err
}

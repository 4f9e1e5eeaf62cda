package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"taskapp/internal/adapter/database/sqlite"
	"taskapp/internal/core/domain"
	"taskapp/internal/core/port"
	tel "taskapp/internal/core/telemetry"
)

var userColumns = []string{
	"id", "uuid", "name", "email", "age",
	"encrypted_password", "tokens", "avatar", "created_at", "updated_at",
}

type UserRepository struct {
	db        *sqlite.DB
	telemetry port.Telemetry
}

func NewUserRepository(db *sqlite.DB, telemetry port.Telemetry) port.UserRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &UserRepository{db: db, telemetry: telemetry}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		user      domain.User
		uid       string
		tokensRaw string
		avatar    []byte
	)

	err := row.Scan(
		&user.ID, &uid, &user.Name, &user.Email, &user.Age,
		&user.EncryptedPassword, &tokensRaw, &avatar,
		&user.CreatedAt, &user.UpdatedAt,
	)

	if err != nil {
		return domain.User{}, err
	}

	user.UUID, err = uuid.Parse(uid)

	if err != nil {
		return domain.User{}, err
	}

	if err := json.Unmarshal([]byte(tokensRaw), &user.Tokens); err != nil {
		return domain.User{}, err
	}

	user.Avatar = avatar

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

	return scanUser(ur.db.QueryRowContext(ctx, stmt, args...))
}

func (ur *UserRepository) GetByUUID(ctx context.Context, uid string) (domain.User, error) {
	return ur.getBy(ctx, sq.Eq{"uuid": uid})
}

func (ur *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return ur.getBy(ctx, sq.Eq{"email": email})
}

func (ur *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	start := time.Now()

	ctx, span := ur.telemetry.StartRepositorySpan(ctx, "Create", "user", nil)
	defer span.End()

	created, err := ur.create(ctx, user)

	ur.telemetry.RecordRepositoryOperation(ctx, "Create", "user", time.Since(start), err)

	return created, err
}

func (ur *UserRepository) create(ctx context.Context, user domain.User) (domain.User, error) {
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

	if _, err := ur.db.ExecContext(ctx, stmt, args...); err != nil {
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

	if _, err := ur.db.ExecContext(ctx, stmt, args...); err != nil {
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

	_, err = ur.db.ExecContext(ctx, stmt, args...)

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

// mutateTokens runs a read-modify-write on the token list inside one
// transaction so concurrent issuance and revocation never lose writes.
func (ur *UserRepository) mutateTokens(ctx context.Context, userID int, mutate func([]string) []string) error {
	tx, err := ur.db.BeginTx(ctx, nil)

	if err != nil {
		return err
	}

	defer tx.Rollback()

	selectStmt, selectArgs, err := ur.db.QueryBuilder.Select("tokens").
		From("users").
		Where(sq.Eq{"id": userID}).
		ToSql()

	if err != nil {
		return err
	}

	var tokensRaw string

	if err := tx.QueryRowContext(ctx, selectStmt, selectArgs...).Scan(&tokensRaw); err != nil {
		return err
	}

	var tokens []string

	if err := json.Unmarshal([]byte(tokensRaw), &tokens); err != nil {
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

	if _, err := tx.ExecContext(ctx, updateStmt, updateArgs...); err != nil {
		return err
	}

	return tx.Commit()
}

func (ur *UserRepository) DeleteAccount(ctx context.Context, user domain.User) error {
	start := time.Now()

	ctx, span := ur.telemetry.StartRepositorySpan(ctx, "DeleteAccount", "user", nil)
	defer span.End()

	err := ur.deleteAccount(ctx, user)

	ur.telemetry.RecordRepositoryOperation(ctx, "DeleteAccount", "user", time.Since(start), err)

	return err
}

// deleteAccount runs the task cascade and the account delete in one
// transaction: either both row sets go away or neither does.
func (ur *UserRepository) deleteAccount(ctx context.Context, user domain.User) error {
	tx, err := ur.db.BeginTx(ctx, nil)

	if err != nil {
		return err
	}

	defer tx.Rollback()

	tasksStmt, tasksArgs, err := ur.db.QueryBuilder.Delete("tasks").
		Where(sq.Eq{"owner_id": user.ID}).
		ToSql()

	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, tasksStmt, tasksArgs...); err != nil {
		slog.Error("Error cascading task deletion", "error", err)
		return &domain.DependencyError{Dependency: "task store", Err: err}
	}

	userStmt, userArgs, err := ur.db.QueryBuilder.Delete("users").
		Where(sq.Eq{"uuid": user.UUID.String()}).
		ToSql()

	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, userStmt, userArgs...)

	if err != nil {
		slog.Error("Error deleting user", "error", err)
		return err
	}

	rowsAffected, err := result.RowsAffected()

	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return &domain.NotFoundError{Resource: "user"}
	}

	return tx.Commit()
}

// mapUniqueEmail turns the driver's unique constraint failure into the
// validation error callers expect for a duplicate address.
func mapUniqueEmail(err error) error {
	if err == nil {
		return nil
	}

	if strings.Contains(err.Error(), "users.email") && strings.Contains(err.Error(), "UNIQUE") {
		return domain.NewValidationError(domain.FieldViolation{
			Field:   "email",
			Message: "Email is already in use",
		})
	}

	return err
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"taskapp/internal/core/domain"
	"taskapp/internal/core/port"
	"taskapp/internal/core/util"
)

const avatarCacheTTL = 5 * time.Minute

// AccountService coordinates the account lifecycle: signup, login,
// session revocation, profile updates, avatar handling and the cascade
// that removes owned tasks when the account is deleted.
type AccountService struct {
	users      port.UserRepository
	tasks      port.TaskRepository
	tokens     port.TokenService
	transcoder port.AvatarTranscoder
	notifier   port.Notifier
	cache      port.CacheRepository
	telemetry  port.Telemetry
}

func NewAccountService(
	users port.UserRepository,
	tasks port.TaskRepository,
	tokens port.TokenService,
	transcoder port.AvatarTranscoder,
	notifier port.Notifier,
	cache port.CacheRepository,
	telemetry port.Telemetry,
) *AccountService {
	return &AccountService{
		users:      users,
		tasks:      tasks,
		tokens:     tokens,
		transcoder: transcoder,
		notifier:   notifier,
		cache:      cache,
		telemetry:  telemetry,
	}
}

func (as *AccountService) SignUp(ctx context.Context, name, email, password string, age int) (domain.User, string, error) {
	user := domain.User{Name: name, Email: email, Age: age}
	user.Normalize()

	violations := util.ValidatePassword(password)
	violations = append(violations, user.Validate()...)

	if len(violations) > 0 {
		return domain.User{}, "", domain.NewValidationError(violations...)
	}

	encrypted, err := util.GenerateEncrypt(password)

	if err != nil {
		// Never fall back to persisting plaintext.
		return domain.User{}, "", fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()

	user.UUID = uuid.New()
	user.EncryptedPassword = encrypted
	user.CreatedAt = now
	user.UpdatedAt = now

	saved, err := as.users.Create(ctx, user)

	if err != nil {
		return domain.User{}, "", err
	}

	token, err := as.tokens.Issue(ctx, &saved)

	if err != nil {
		return domain.User{}, "", err
	}

	as.notifier.SendWelcome(ctx, saved.Email, saved.Name)
	as.telemetry.RecordBusinessEvent(ctx, "account_created", "user", saved.UUID.String(), saved.ID, nil)

	return saved, token, nil
}

func (as *AccountService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	normalized := domain.User{Email: email}
	normalized.Normalize()

	user, err := as.users.GetByEmail(ctx, normalized.Email)

	if err != nil {
		slog.Error("Account#Login", "get_by_email", err)
		return domain.User{}, "", domain.ErrUnableToLogin
	}

	if err := util.ComparePassword(password, user.EncryptedPassword); err != nil {
		slog.Error("Account#Login", "compare_password", err)
		return domain.User{}, "", domain.ErrUnableToLogin
	}

	token, err := as.tokens.Issue(ctx, &user)

	if err != nil {
		return domain.User{}, "", err
	}

	return user, token, nil
}

func (as *AccountService) Logout(ctx context.Context, user domain.User, token string) error {
	return as.tokens.Revoke(ctx, &user, token)
}

func (as *AccountService) LogoutAll(ctx context.Context, user domain.User) error {
	return as.tokens.RevokeAll(ctx, &user)
}

var allowedUpdates = map[string]bool{
	"name":     true,
	"email":    true,
	"password": true,
	"age":      true,
}

// Update applies a partial field map. The whole request fails before any
// mutation when it names a field outside the allow-list.
func (as *AccountService) Update(ctx context.Context, user domain.User, updates map[string]json.RawMessage) (domain.User, error) {
	var violations []domain.FieldViolation

	for field := range updates {
		if !allowedUpdates[field] {
			violations = append(violations, domain.FieldViolation{Field: field, Message: "Invalid updates!"})
		}
	}

	if len(violations) > 0 {
		return domain.User{}, domain.NewValidationError(violations...)
	}

	updated := user

	if raw, ok := updates["name"]; ok {
		if err := json.Unmarshal(raw, &updated.Name); err != nil {
			violations = append(violations, domain.FieldViolation{Field: "name", Message: "Name must be a string"})
		}
	}

	if raw, ok := updates["email"]; ok {
		if err := json.Unmarshal(raw, &updated.Email); err != nil {
			violations = append(violations, domain.FieldViolation{Field: "email", Message: "Email must be a string"})
		}
	}

	if raw, ok := updates["age"]; ok {
		if err := json.Unmarshal(raw, &updated.Age); err != nil {
			violations = append(violations, domain.FieldViolation{Field: "age", Message: "Age must be a number"})
		}
	}

	if raw, ok := updates["password"]; ok {
		var password string

		if err := json.Unmarshal(raw, &password); err != nil {
			violations = append(violations, domain.FieldViolation{Field: "password", Message: "Password must be a string"})
		} else if pwViolations := util.ValidatePassword(password); len(pwViolations) > 0 {
			violations = append(violations, pwViolations...)
		} else {
			encrypted, err := util.GenerateEncrypt(password)

			if err != nil {
				return domain.User{}, fmt.Errorf("hashing password: %w", err)
			}

			updated.EncryptedPassword = encrypted
		}
	}

	updated.Normalize()
	violations = append(violations, updated.Validate()...)

	if len(violations) > 0 {
		return domain.User{}, domain.NewValidationError(violations...)
	}

	updated.UpdatedAt = time.Now()

	saved, err := as.users.Update(ctx, updated)

	if err != nil {
		return domain.User{}, err
	}

	return saved, nil
}

// Delete removes the account and every task it owns. The store runs the
// cascade and the account delete in one transaction, so a failure on
// either leg leaves both the account and its tasks behind.
func (as *AccountService) Delete(ctx context.Context, user domain.User) error {
	// Best effort, with the pre-deletion identity.
	as.notifier.SendGoodbye(ctx, user.Email, user.Name)

	owned, err := as.tasks.CountByOwner(ctx, user.ID)

	if err != nil {
		return &domain.DependencyError{Dependency: "task store", Err: err}
	}

	if err := as.users.DeleteAccount(ctx, user); err != nil {
		return err
	}

	as.invalidateAvatar(ctx, user.UUID.String())
	as.telemetry.RecordBusinessEvent(ctx, "account_deleted", "user", user.UUID.String(), user.ID, map[string]interface{}{
		"cascaded_tasks": owned,
	})

	return nil
}

func (as *AccountService) SetAvatar(ctx context.Context, user domain.User, data []byte) error {
	normalized, err := as.transcoder.Normalize(data)

	if err != nil {
		return err
	}

	if err := as.users.UpdateAvatar(ctx, user.ID, normalized); err != nil {
		return err
	}

	as.invalidateAvatar(ctx, user.UUID.String())

	return nil
}

func (as *AccountService) RemoveAvatar(ctx context.Context, user domain.User) error {
	if err := as.users.UpdateAvatar(ctx, user.ID, nil); err != nil {
		return err
	}

	as.invalidateAvatar(ctx, user.UUID.String())

	return nil
}

// AvatarByUUID is the one public lookup: no token required.
func (as *AccountService) AvatarByUUID(ctx context.Context, uid string) ([]byte, error) {
	key := avatarCacheKey(uid)

	if cached, err := as.cache.Get(ctx, key); err == nil && len(cached) > 0 {
		return cached, nil
	}

	user, err := as.users.GetByUUID(ctx, uid)

	if err != nil || !user.HasAvatar() {
		return nil, &domain.NotFoundError{Resource: "avatar"}
	}

	if err := as.cache.Set(ctx, key, user.Avatar, avatarCacheTTL); err != nil {
		slog.Warn("Account#AvatarByUUID", "cache_set", err)
	}

	return user.Avatar, nil
}

func (as *AccountService) invalidateAvatar(ctx context.Context, uid string) {
	if err := as.cache.Delete(ctx, avatarCacheKey(uid)); err != nil {
		slog.Warn("Account#invalidateAvatar", "cache_delete", err)
	}
}

func avatarCacheKey(uid string) string {
	return "avatar:" + uid
}

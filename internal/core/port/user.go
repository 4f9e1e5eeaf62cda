package port

import (
	"context"
	"encoding/json"

	"taskapp/internal/core/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByUUID(ctx context.Context, uuid string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
	UpdateAvatar(ctx context.Context, userID int, avatar []byte) error

	// Token list mutations are atomic per account: concurrent appends and
	// removals must not lose each other's writes.
	AppendToken(ctx context.Context, userID int, token string) error
	RemoveToken(ctx context.Context, userID int, token string) error
	ClearTokens(ctx context.Context, userID int) error

	// DeleteAccount removes the account row and every task it owns in
	// one transaction. A failure on the task leg surfaces as a
	// DependencyError and leaves the account intact.
	DeleteAccount(ctx context.Context, user domain.User) error
}

type AccountService interface {
	SignUp(ctx context.Context, name, email, password string, age int) (domain.User, string, error)
	Login(ctx context.Context, email, password string) (domain.User, string, error)
	Logout(ctx context.Context, user domain.User, token string) error
	LogoutAll(ctx context.Context, user domain.User) error
	Update(ctx context.Context, user domain.User, updates map[string]json.RawMessage) (domain.User, error)
	Delete(ctx context.Context, user domain.User) error
	SetAvatar(ctx context.Context, user domain.User, data []byte) error
	RemoveAvatar(ctx context.Context, user domain.User) error
	AvatarByUUID(ctx context.Context, uuid string) ([]byte, error)
}

package port

import (
	"context"

	"taskapp/internal/core/domain"
)

// TokenService mints and revokes bearer session tokens. A token is only
// valid while it is both signed with the issuance secret and still
// present in the account's token list, so revocation is store-backed
// rather than expiry-based.
type TokenService interface {
	Issue(ctx context.Context, user *domain.User) (string, error)
	Authenticate(ctx context.Context, token string) (domain.User, error)
	Revoke(ctx context.Context, user *domain.User, token string) error
	RevokeAll(ctx context.Context, user *domain.User) error
}

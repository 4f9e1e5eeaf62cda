package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"taskapp/internal/core/domain"
	"taskapp/internal/core/port"
)

// TokenService issues HS256 bearer tokens bound to an account and keeps
// the account's token list as the revocation source of truth. A signed
// token whose value is no longer in the list is rejected.
type TokenService struct {
	repo   port.UserRepository
	secret []byte
}

func NewTokenService(repo port.UserRepository, secret string) *TokenService {
	return &TokenService{repo: repo, secret: []byte(secret)}
}

func (ts *TokenService) Issue(ctx context.Context, user *domain.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_uuid": user.UUID.String(),
		"iat":       time.Now().Unix(),
		"jti":       uuid.NewString(),
	})

	signed, err := token.SignedString(ts.secret)

	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}

	// The token only becomes valid once it is persisted in the account's
	// list. Persist first, then hand it out.
	if err := ts.repo.AppendToken(ctx, user.ID, signed); err != nil {
		return "", err
	}

	user.Tokens = append(user.Tokens, signed)

	return signed, nil
}

func (ts *TokenService) Authenticate(ctx context.Context, tokenString string) (domain.User, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}

		return ts.secret, nil
	})

	if err != nil || !parsed.Valid {
		slog.Error("Token#Authenticate", "parse", err)
		return domain.User{}, domain.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)

	if !ok {
		return domain.User{}, domain.ErrUnauthorized
	}

	uid, ok := claims["user_uuid"].(string)

	if !ok {
		return domain.User{}, domain.ErrUnauthorized
	}

	user, err := ts.repo.GetByUUID(ctx, uid)

	if err != nil {
		slog.Error("Token#Authenticate", "get_by_uuid", err)
		return domain.User{}, domain.ErrUnauthorized
	}

	// Structural validity is not enough: a logged-out token still carries
	// a good signature but is gone from the list.
	if !user.HasToken(tokenString) {
		return domain.User{}, domain.ErrUnauthorized
	}

	return user, nil
}

func (ts *TokenService) Revoke(ctx context.Context, user *domain.User, token string) error {
	if err := ts.repo.RemoveToken(ctx, user.ID, token); err != nil {
		return err
	}

	remaining := user.Tokens[:0]

	for _, t := range user.Tokens {
		if t != token {
			remaining = append(remaining, t)
		}
	}

	user.Tokens = remaining

	return nil
}

func (ts *TokenService) RevokeAll(ctx context.Context, user *domain.User) error {
	if err := ts.repo.ClearTokens(ctx, user.ID); err != nil {
		return err
	}

	user.Tokens = nil

	return nil
}

package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"taskapp/internal/adapter/http/helper"
	"taskapp/internal/core/domain"
	"taskapp/internal/core/port"
)

const (
	currentUserKey  = "current_user"
	currentTokenKey = "current_token"
)

// BearerAuth resolves the Authorization header into an authenticated
// account. The raw token is kept alongside the user so logout can
// revoke exactly the credential that carried the request.
func BearerAuth(tokens port.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")

		token, ok := strings.CutPrefix(header, "Bearer ")

		if !ok || token == "" {
			helper.SendUnauthorizedError(c, domain.ErrUnauthorized.Message)
			c.Abort()
			return
		}

		user, err := tokens.Authenticate(c.Request.Context(), token)

		if err != nil {
			helper.SendUnauthorizedError(c, domain.ErrUnauthorized.Message)
			c.Abort()
			return
		}

		c.Set(currentUserKey, user)
		c.Set(currentTokenKey, token)

		c.Next()
	}
}

// CurrentUser returns the account authenticated by BearerAuth.
func CurrentUser(c *gin.Context) (domain.User, bool) {
	value, ok := c.Get(currentUserKey)

	if !ok {
		return domain.User{}, false
	}

	user, ok := value.(domain.User)

	return user, ok
}

// CurrentToken returns the bearer token that authenticated the request.
func CurrentToken(c *gin.Context) string {
	return c.GetString(currentTokenKey)
}

package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mod5ied/eagle-server/internal/models"
)

// CookieName is the session cookie holding the signed token.
const CookieName = "token"

// identityKey is the gin context key holding the authenticated user.
const identityKey = "identity"

type identityCtxKey struct{}

// Middleware rejects requests without a valid session cookie with 401. On
// success the user is available through IdentityFromContext and
// IdentityFromGin.
func Middleware(tokens *TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CookieName)
		if err != nil || token == "" {
			abortUnauthorized(c)
			return
		}

		claims, ok := tokens.Verify(token)
		if !ok {
			abortUnauthorized(c)
			return
		}

		user := &models.User{ID: claims.Subject, Email: claims.Email}
		c.Set(identityKey, user)
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), user))
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
}

// WithIdentity stores user in ctx.
func WithIdentity(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, user)
}

// IdentityFromContext returns the user stored by Middleware.
func IdentityFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(identityCtxKey{}).(*models.User)
	return user, ok && user != nil
}

// IdentityFromGin returns the user stored by Middleware.
func IdentityFromGin(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

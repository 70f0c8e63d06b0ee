package middleware

import (
	"strings"

	"anoa.com/itemprofile/internal/entity"
	userService "anoa.com/itemprofile/internal/modules/user/service"
	"anoa.com/itemprofile/pkg/apperror"
	"anoa.com/itemprofile/pkg/response"
	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

type AuthMiddleware struct {
	auth userService.AuthService
}

func NewAuthMiddleware(auth userService.AuthService) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// RequireAuth resolves the bearer token to an enabled identity and stores the
// principal on the context for handlers to pass down explicitly.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenString = strings.TrimSpace(parts[1])
			}
		}

		if tokenString == "" {
			response.ResponseError(c, apperror.Unauthorized("authorization required"))
			c.Abort()
			return
		}

		identity, err := m.auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			response.ResponseError(c, err)
			c.Abort()
			return
		}

		c.Set(identityKey, identity)
		c.Set(response.UserIDKey, identity.ID.String())
		c.Set(response.UsernameKey, identity.Username)
		c.Set(response.RolesKey, identity.Roles)
		c.Next()
	}
}

func CurrentIdentity(c *gin.Context) (*entity.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*entity.Identity)
	return identity, ok && identity != nil
}

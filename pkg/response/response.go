package response

import (
	"net/http"

	"anoa.com/itemprofile/pkg/apperror"
	"anoa.com/itemprofile/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys written by the auth middleware.
const (
	UserIDKey   = "user_id"
	UsernameKey = "username"
	RolesKey    = "roles"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	s, ok := userIDStr.(string)
	if !ok {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	if code == http.StatusInternalServerError {
		logger.FromGin(c).WithError(err).Error("request failed")
		c.JSON(code, gin.H{"error": apperror.ErrInternal.Error()})
		return
	}

	c.JSON(code, gin.H{"error": err.Error()})
}

// Message writes a {"message": ...} body.
func Message(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"message": msg})
}

package server

import (
	"net/http"

	"anoa.com/itemprofile/internal/middleware"
	"anoa.com/itemprofile/pkg/apperror"
	"anoa.com/itemprofile/pkg/response"
	"github.com/gin-gonic/gin"
)

func publicCheck(c *gin.Context) {
	response.Message(c, http.StatusOK, "This is a public endpoint - no authentication required")
}

func protectedCheck(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.ResponseError(c, apperror.ErrUnauthorized)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "This is a protected endpoint - authentication required",
		"username": identity.Username,
		"email":    identity.Email,
		"roles":    identity.Roles,
	})
}

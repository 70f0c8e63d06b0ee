package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"anoa.com/itemprofile/internal/middleware"
	"anoa.com/itemprofile/internal/modules/user/dto"
	"anoa.com/itemprofile/internal/modules/user/service"
	"anoa.com/itemprofile/pkg/apperror"
	"anoa.com/itemprofile/pkg/ratelimiter"
	"anoa.com/itemprofile/pkg/response"
	"anoa.com/itemprofile/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type AuthHandler struct {
	service service.AuthService
}

func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register trims the request before validating it, so length limits apply to
// the stored values.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		response.ResponseError(c, apperror.InvalidInput("invalid request body"))
		return
	}
	req.Normalize()
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		response.ResponseError(c, apperror.InvalidInput(validator.FormatValidationError(err)))
		return
	}

	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, apperror.InvalidInput(validator.FormatValidationError(err)))
		return
	}

	req.ClientIP = c.ClientIP()

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		var limitErr *ratelimiter.LimitError
		if errors.As(err, &limitErr) {
			c.Header("Retry-After", fmt.Sprintf("%.0f", limitErr.RetryAfter.Seconds()))
		}
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) Validate(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.ResponseError(c, apperror.Unauthorized("invalid token"))
		return
	}

	c.JSON(http.StatusOK, h.service.Validate(identity))
}

package handler

import (
	"net/http"

	profileDto "anoa.com/itemprofile/internal/modules/profile/dto"
	profile "anoa.com/itemprofile/internal/modules/profile/service"
	"anoa.com/itemprofile/pkg/apperror"
	"anoa.com/itemprofile/pkg/response"
	"anoa.com/itemprofile/pkg/validator"
	"github.com/gin-gonic/gin"
)

const maxAvatarBytes = 5 << 20

type ProfileHandler struct {
	profileService profile.ProfileService
}

func NewProfileHandler(profileService profile.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.profileService.Get(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ProfileHandler) CreateOrUpdateProfile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input profileDto.ProfileRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ResponseError(c, apperror.InvalidInput(validator.FormatValidationError(err)))
		return
	}

	res, err := h.profileService.CreateOrUpdate(c.Request.Context(), userID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.profileService.Delete(c.Request.Context(), userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Message(c, http.StatusOK, "profile deleted successfully")
}

func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAvatarBytes)
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		response.ResponseError(c, apperror.InvalidInput("avatar file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.ResponseError(c, apperror.InvalidInput("failed to read avatar"))
		return
	}
	defer file.Close()

	res, err := h.profileService.UploadAvatar(c.Request.Context(), userID, profileDto.AvatarFile{
		Reader:   file,
		FileName: fileHeader.Filename,
	})
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

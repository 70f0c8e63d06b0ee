package handler

import (
	"net/http"

	"anoa.com/itemprofile/internal/modules/item/dto"
	item "anoa.com/itemprofile/internal/modules/item/service"
	"anoa.com/itemprofile/pkg/apperror"
	"anoa.com/itemprofile/pkg/response"
	"anoa.com/itemprofile/pkg/validator"
	"github.com/gin-gonic/gin"
)

type ItemHandler struct {
	service item.ItemService
}

func NewItemHandler(service item.ItemService) *ItemHandler {
	return &ItemHandler{service: service}
}

func (h *ItemHandler) CreateItem(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, apperror.InvalidInput(validator.FormatValidationError(err)))
		return
	}

	res, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *ItemHandler) GetItems(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	items, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *ItemHandler) SearchItems(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var q dto.SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ResponseError(c, apperror.InvalidInput(validator.FormatValidationError(err)))
		return
	}

	items, err := h.service.Search(c.Request.Context(), userID, q)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *ItemHandler) GetItem(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ItemHandler) UpdateItem(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, apperror.InvalidInput(validator.FormatValidationError(err)))
		return
	}

	res, err := h.service.Update(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ItemHandler) DeleteItem(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Message(c, http.StatusOK, "item deleted successfully")
}

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"anoa.com/itemprofile/internal/entity"
	"anoa.com/itemprofile/internal/modules/item/dto"
	"anoa.com/itemprofile/internal/modules/item/repository"
	item "anoa.com/itemprofile/internal/modules/item/service"
	"anoa.com/itemprofile/internal/testdb"
	"anoa.com/itemprofile/pkg/logger"
	"anoa.com/itemprofile/pkg/response"
	"anoa.com/itemprofile/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validator.RegisterCustom())

	db := testdb.New(t)
	owner := entity.User{Username: "alice", Email: "alice@x.com", PasswordHash: "hash", Enabled: true}
	require.NoError(t, db.Create(&owner).Error)

	h := NewItemHandler(item.NewItemService(repository.NewItemRepository(db), nil, logger.Discard()))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(response.UserIDKey, owner.ID.String())
		c.Next()
	})
	r.POST("/items", h.CreateItem)
	r.GET("/items", h.GetItems)
	r.GET("/items/search", h.SearchItems)
	r.GET("/items/:id", h.GetItem)
	r.PUT("/items/:id", h.UpdateItem)
	r.DELETE("/items/:id", h.DeleteItem)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestItemLifecycle(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodPost, "/items", `{"name":"book","description":"paper"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created dto.ItemResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "book", created.Name)

	w = do(r, http.MethodGet, "/items/"+created.ID.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPut, "/items/"+created.ID.String(), `{"name":"novel"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"novel"`)

	w = do(r, http.MethodGet, "/items/search?q=nov", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), created.ID.String())

	w = do(r, http.MethodDelete, "/items/"+created.ID.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"item deleted successfully"}`, w.Body.String())

	w = do(r, http.MethodGet, "/items", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestItemValidationAndNotFound(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodPost, "/items", `{"name":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Name is required")

	w = do(r, http.MethodPost, "/items", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/items/42", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodDelete, "/items/00000000-0000-0000-0000-000000000000", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/items/search", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

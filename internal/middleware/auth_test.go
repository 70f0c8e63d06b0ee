package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/itemprofile/internal/entity"
	"anoa.com/itemprofile/internal/modules/user/dto"
	"anoa.com/itemprofile/pkg/apperror"
	"anoa.com/itemprofile/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubAuth struct {
	identity *entity.Identity
	err      error
	gotToken string
}

func (s *stubAuth) Register(context.Context, dto.RegisterRequest) (*dto.AuthResponse, error) {
	return nil, nil
}

func (s *stubAuth) Login(context.Context, dto.LoginRequest) (*dto.AuthResponse, error) {
	return nil, nil
}

func (s *stubAuth) Authenticate(_ context.Context, bearer string) (*entity.Identity, error) {
	s.gotToken = bearer
	return s.identity, s.err
}

func (s *stubAuth) Validate(*entity.Identity) *dto.ValidateResponse { return nil }

func newRouter(auth *stubAuth) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", NewAuthMiddleware(auth).RequireAuth(), func(c *gin.Context) {
		id, err := response.GetUserID(c)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		identity, _ := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"id": id.String(), "username": identity.Username})
	})
	return r
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	auth := &stubAuth{}
	w := httptest.NewRecorder()
	newRouter(auth).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, auth.gotToken)
}

func TestRequireAuth_RejectedToken(t *testing.T) {
	auth := &stubAuth{err: apperror.Unauthorized("invalid or expired token")}
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer abc")

	w := httptest.NewRecorder()
	newRouter(auth).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "abc", auth.gotToken)
}

func TestRequireAuth_SetsPrincipal(t *testing.T) {
	id := uuid.New()
	auth := &stubAuth{identity: &entity.Identity{ID: id, Username: "alice", Enabled: true, Roles: []string{"user"}}}
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer tok")

	w := httptest.NewRecorder()
	newRouter(auth).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"`+id.String()+`","username":"alice"}`, w.Body.String())
}

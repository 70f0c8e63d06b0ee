package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareCountsMatchedRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/items/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/items/:id", "404"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/items/abc", nil))

	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/items/:id", "404"))
	assert.Equal(t, before+1, after)
}

func TestRecordAuthEvent(t *testing.T) {
	before := testutil.ToFloat64(authEvents.WithLabelValues("login", "failed"))
	RecordAuthEvent("login", "failed")
	assert.Equal(t, before+1, testutil.ToFloat64(authEvents.WithLabelValues("login", "failed")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	RecordAuthEvent("register", "success")

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "itemprofile_auth_events_total")
}

package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiaorakahi/marketplace/pkg/auth"
)

func TestIPLimiterIsPerClient(t *testing.T) {
	l := NewIPLimiter(60, 2)
	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))
}

func TestRateLimitSetsRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/x", RateLimit(NewIPLimiter(1, 1)), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.RemoteAddr = "198.51.100.4:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}
	assert.Equal(t, http.StatusNoContent, send().Code)
	w := send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestJWTAuthAndRoles(t *testing.T) {
	t.Setenv("JWT_SECRET", "middleware-secret")
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/admin", JWTAuth(), RequireRole(auth.RoleAdmin), func(c *gin.Context) {
		u := Caller(c)
		c.JSON(http.StatusOK, gin.H{"id": u.ID, "role": u.Role, "name": CallerName(c)})
	})
	get := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, get("").Code)
	assert.Equal(t, http.StatusUnauthorized, get("Bearer not-a-jwt").Code)

	fan, err := auth.CreateAccessToken("u1", auth.RoleFan, "u1@example.com", "Fan", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, get("Bearer "+fan).Code)

	admin, err := auth.CreateAccessToken("u2", auth.RoleAdmin, "u2@example.com", "Ops", time.Minute)
	require.NoError(t, err)
	w := get("Bearer " + admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"u2","role":"ADMIN","name":"Ops"}`, w.Body.String())
}

func TestOptionalAuthLetsAnonymousThrough(t *testing.T) {
	t.Setenv("JWT_SECRET", "middleware-secret")
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/", OptionalAuth(), func(c *gin.Context) { c.String(http.StatusOK, Caller(c).ID) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	a "github.com/kiaorakahi/marketplace/pkg/auth"
	"github.com/kiaorakahi/marketplace/pkg/rpc"
)

const (
	keySub   = "sub"
	keyRole  = "role"
	keyEmail = "email"
	keyName  = "name"
)

func bearer(c *gin.Context) (*a.Claims, bool) {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return nil, false
	}
	claims, err := a.ParseValidate(strings.TrimPrefix(h, "Bearer "))
	if err != nil {
		return nil, false
	}
	return claims, true
}

func setClaims(c *gin.Context, claims *a.Claims) {
	c.Set(keySub, claims.Sub)
	c.Set(keyRole, claims.Role)
	c.Set(keyEmail, claims.Email)
	c.Set(keyName, claims.Name)
}

func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearer(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth records the caller when a valid token is present and lets
// anonymous requests through.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := bearer(c); ok {
			setClaims(c, claims)
		}
		c.Next()
	}
}

func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := map[string]struct{}{}
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := allowed[c.GetString(keyRole)]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// Caller is the signed-in user, or the zero User for anonymous requests.
func Caller(c *gin.Context) rpc.User {
	return rpc.User{ID: c.GetString(keySub), Email: c.GetString(keyEmail), Role: c.GetString(keyRole)}
}

func CallerName(c *gin.Context) string { return c.GetString(keyName) }

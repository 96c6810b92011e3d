package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/todofy/todofy/internal/sessions"
)

// Context keys set by AuthMiddleware.
const (
	ContextClaims      = "claims"
	ContextPrincipal   = "principal"
	ContextAccessToken = "accessToken"
)

// Token is the minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// AuthMiddleware verifies Bearer tokens and resolves the request principal.
// Requests without a resolvable principal are rejected with 401 before any
// handler runs; handlers may rely on ContextPrincipal being set.
func AuthMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "missing Authorization header"})
			return
		}
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid Authorization header"})
			return
		}

		if listed, err := sessions.IsAccessTokenBlacklisted(c.Request.Context(), token); err == nil && listed {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "token revoked"})
			return
		}

		verified, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid token"})
			return
		}

		var claims map[string]interface{}
		if err := verified.Claims(&claims); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "failed to parse claims"})
			return
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "token missing subject"})
			return
		}

		c.Set(ContextClaims, claims)
		c.Set(ContextPrincipal, sub)
		c.Set(ContextAccessToken, token)
		c.Next()
	}
}

// PrincipalID returns the authenticated principal id, or "" when the request
// is unauthenticated.
func PrincipalID(c *gin.Context) string {
	v, ok := c.Get(ContextPrincipal)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

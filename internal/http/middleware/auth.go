// README: Firebase auth middleware. Every caller must belong to an organization.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vtcquote/internal/infra"
)

const (
	callerUIDKey = "callerUID"
	callerOrgKey = "callerOrg"

	// DevOrgHeader selects the organization when token verification is disabled.
	DevOrgHeader = "X-Org-ID"
)

// Auth verifies the bearer token and stores the caller uid and organization in the context.
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}

		token, err := verifier.VerifyIDToken(c.Request.Context(), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		org := token.OrgID()
		if org == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token carries no organization"})
			return
		}

		c.Set(callerUIDKey, token.UID)
		c.Set(callerOrgKey, org)
		c.Next()
	}
}

// DevAuth trusts the X-Org-ID header. Development only.
func DevAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		org := c.GetHeader(DevOrgHeader)
		if org == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": DevOrgHeader + " header required"})
			return
		}
		c.Set(callerUIDKey, "dev")
		c.Set(callerOrgKey, org)
		c.Next()
	}
}

func CallerUID(c *gin.Context) string {
	return c.GetString(callerUIDKey)
}

func CallerOrg(c *gin.Context) string {
	return c.GetString(callerOrgKey)
}

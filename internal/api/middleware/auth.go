package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// adminIDKey is the context key the admin middleware stores the
// authenticated principal under.
const adminIDKey = "adminID"

// AdminHeader carries the admin principal id, set by the API gateway
// after it verifies the session token.
const AdminHeader = "X-Admin-ID"

// RequireAdmin returns a gin middleware that rejects requests without a
// verified admin principal.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(AdminHeader)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin authentication required"})
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin principal"})
			return
		}

		c.Set(adminIDKey, id)
		c.Next()
	}
}

// AdminID returns the authenticated admin principal for the request.
func AdminID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(adminIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

package authn

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireToken is gin middleware that extracts a bearer token from the
// Authorization header, falling back to a ?token= query parameter since a
// browser's WebSocket API cannot set custom headers on the upgrade
// request. On success it stores the verified ClientID in the gin context
// under "clientId".
func RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearer(c.Request.Header.Get("Authorization"))
		if tokenString == "" {
			tokenString = strings.TrimSpace(c.Query("token"))
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(401, gin.H{
				"code":    "UNAUTHENTICATED",
				"message": "authorization header or token query parameter is missing",
			})
			return
		}

		claims, err := ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{
				"code":    "UNAUTHENTICATED",
				"message": "invalid token",
			})
			return
		}

		c.Set("clientId", string(claims.ClientID))
		c.Next()
	}
}

func extractBearer(header string) string {
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

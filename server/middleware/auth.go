package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderToken is the header carrying the access token.
const HeaderToken = "X-Token"

// AuthConfig configures the token authentication middleware.
type AuthConfig struct {
	// Tokens lists the accepted tokens. An empty list disables the check.
	Tokens []string
	// QueryParam also accepts the token from this query parameter when set.
	QueryParam string
	// SkipPaths are URL path prefixes that bypass authentication.
	SkipPaths []string
}

// Auth returns a Gin middleware that rejects requests without an accepted
// token with 401 and an {"error": ...} body.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(cfg.Tokens) == 0 {
			c.Next()
			return
		}
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if strings.HasPrefix(path, skip) {
				c.Next()
				return
			}
		}

		token := c.GetHeader(HeaderToken)
		if token == "" && cfg.QueryParam != "" {
			token = c.Query(cfg.QueryParam)
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "token required",
			})
			return
		}
		if !accepted(cfg.Tokens, token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid token",
			})
			return
		}
		c.Next()
	}
}

func accepted(tokens []string, token string) bool {
	for _, t := range tokens {
		if subtle.ConstantTimeCompare([]byte(t), []byte(token)) == 1 {
			return true
		}
	}
	return false
}

package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/beppofit-auth/internal/common"
	"github.com/dmitrijs2005/beppofit-auth/internal/logging"
	"github.com/gin-gonic/gin"
)

const subjectKey = "subject"

// Authenticator resolves a bearer token to a subject id.
type Authenticator interface {
	Authenticate(token string) (string, error)
}

// RequireBearer rejects requests without a valid "Authorization: Bearer"
// token with 401 and stores the subject id for the handler.
func RequireBearer(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "Missing Authorization Header")
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			abortUnauthorized(c, "Invalid Bearer Token")
			return
		}

		subject, err := a.Authenticate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": common.MessageOf(err)})
			return
		}

		c.Set(subjectKey, subject)
		c.Next()
	}
}

// SubjectFrom returns the subject stored by RequireBearer.
func SubjectFrom(c *gin.Context) string {
	return c.GetString(subjectKey)
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

func requestLogger(l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		l.Info(c.Request.Context(), "HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// permissiveCORS allows any origin, method and header.
func permissiveCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		if req := c.GetHeader("Access-Control-Request-Headers"); req != "" {
			h.Set("Access-Control-Allow-Headers", req)
		} else {
			h.Set("Access-Control-Allow-Headers", "*")
		}
		h.Set("Access-Control-Expose-Headers", "*")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

package api

import (
	"alcyxob/workout-tracker/internal/service"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// Constants for context keys
const (
	ContextSessionIDKey = "sessionID"
)

// SessionTokenHeader is the alternative to "Authorization: Bearer <token>".
const SessionTokenHeader = "X-Session-Token"

// SessionContextMiddleware reads an optional session token. Requests without
// one pass through untouched; a token that does not verify is rejected.
// Other Authorization schemes (Basic for the admin routes) are left alone.
func SessionContextMiddleware(tokens *service.SessionTokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(SessionTokenHeader)
		if authHeader := c.GetHeader("Authorization"); token == "" && authHeader != "" {
			scheme, rest, _ := strings.Cut(authHeader, " ")
			if strings.EqualFold(scheme, "bearer") {
				token = strings.TrimSpace(rest)
				if token == "" {
					abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
					return
				}
			}
		}
		if token == "" || tokens == nil {
			c.Next()
			return
		}

		sessionID, err := tokens.Parse(token)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "Invalid session token")
			return
		}
		c.Set(ContextSessionIDKey, sessionID)
		c.Next()
	}
}

// AdminMiddleware guards maintenance endpoints with HTTP basic auth. The
// password is checked against a bcrypt hash; an empty hash disables the guard.
func AdminMiddleware(username, passwordHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if passwordHash == "" {
			c.Next()
			return
		}
		user, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="admin"`)
			abortWithError(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		userOK := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
		passErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))
		if !userOK || passErr != nil {
			abortWithError(c, http.StatusForbidden, "Invalid admin credentials")
			return
		}
		c.Next()
	}
}

// MaxBodySize caps the request body; reading past it fails with *http.MaxBytesError.
func MaxBodySize(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// abortUploadError maps a failed multipart read to 413 or 400.
func abortUploadError(c *gin.Context, err error, missing string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		abortWithError(c, http.StatusRequestEntityTooLarge, "File too large")
		return
	}
	abortWithError(c, http.StatusBadRequest, missing)
}

// sessionIDFromContext returns the session carried by the request's token, or 0.
func sessionIDFromContext(c *gin.Context) int64 {
	raw, exists := c.Get(ContextSessionIDKey)
	if !exists {
		return 0
	}
	id, _ := raw.(int64)
	return id
}

// resolveSessionID prefers an explicit id from the request, then the token.
// Zero lets the service fall back to the current session.
func resolveSessionID(c *gin.Context, explicit int64) int64 {
	if explicit > 0 {
		return explicit
	}
	return sessionIDFromContext(c)
}

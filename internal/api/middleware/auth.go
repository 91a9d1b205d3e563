package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/dsyorkd/assisted-console/internal/installer"
	"github.com/dsyorkd/assisted-console/internal/logger"
)

const (
	// AuthorizationHeader is the header name for authorization
	AuthorizationHeader = "Authorization"
	// UserIDKey is the context key for user ID
	UserIDKey = "user_id"
	// AccessTokenParam carries the token of websocket upgrades, which
	// browsers cannot send headers with
	AccessTokenParam = "access_token"
)

// Auth requires a bearer token and forwards it to the installer with every
// request made while handling the call. Signatures are checked by the
// installer; the console only reads the claims to identify the user and to
// reject tokens that have already expired.
func Auth(log logger.Interface) gin.HandlerFunc {
	return authWithClock(log, time.Now)
}

func authWithClock(log logger.Interface, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" && isUpgrade(c.Request) {
			if token := c.Query(AccessTokenParam); token != "" {
				authHeader = "Bearer " + token
			}
		}
		if authHeader == "" {
			unauthorized(c, "Authorization header is required")
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			unauthorized(c, "Invalid authorization header format")
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			unauthorized(c, "Invalid or missing token")
			return
		}

		userID, expired := identify(token, now())
		if expired {
			log.Debug("Rejected expired token", "user_id", userID, "ip", c.ClientIP())
			unauthorized(c, installer.SessionExpiredReason)
			return
		}

		c.Set(UserIDKey, userID)
		c.Request = c.Request.WithContext(installer.WithToken(c.Request.Context(), token))
		c.Next()
	}
}

func isUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// identify returns the user a token belongs to. JWTs name it in their claims;
// opaque API keys are identified by a digest of the key.
func identify(token string, now time.Time) (userID string, expired bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		sum := sha256.Sum256([]byte(token))
		return "key:" + hex.EncodeToString(sum[:6]), false
	}

	for _, claim := range []string{"username", "preferred_username", "sub"} {
		if v, ok := claims[claim].(string); ok && v != "" {
			userID = v
			break
		}
	}
	if userID == "" {
		userID = "anonymous"
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && !now.Before(exp.Time) {
		return userID, true
	}
	return userID, false
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "Unauthorized",
		"message": message,
		"alerts":  []interface{}{},
	})
}

// GetUserID returns the user ID from the gin context
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

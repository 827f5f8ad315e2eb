package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/playmatatu/marble-roulette/internal/admin"
	"github.com/playmatatu/marble-roulette/internal/config"
)

const (
	// SessionTokenKey is the gin context key holding the authorized session token.
	SessionTokenKey = "session_token"
	adminHeader     = "X-Admin-Token"
)

// IssueHostToken signs a host JWT allowing control of one session.
func IssueHostToken(cfg *config.Config, sessionToken string) (string, time.Time, error) {
	ttl := time.Duration(cfg.HostTokenTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	exp := time.Now().Add(ttl)
	claims := jwt.MapClaims{
		"session_token": sessionToken,
		"role":          "host",
		"exp":           jwt.NewNumericDate(exp).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign host token: %w", err)
	}
	return signed, exp, nil
}

// ParseHostToken validates a host JWT and returns the session token it grants.
func ParseHostToken(cfg *config.Config, raw string) (string, error) {
	parsed, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return "", errors.New("invalid token")
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token")
	}
	if role, _ := claims["role"].(string); role != "host" {
		return "", errors.New("invalid token")
	}
	session, _ := claims["session_token"].(string)
	if session == "" {
		return "", errors.New("invalid token")
	}
	return session, nil
}

// HostAuth requires a bearer host token issued for the :token path parameter.
func HostAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		session, err := ParseHostToken(cfg, strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if session != c.Param("token") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token not valid for this session"})
			return
		}
		c.Set(SessionTokenKey, session)
		c.Next()
	}
}

// AdminAuth requires X-Admin-Token to match ADMIN_TOKEN_HASH.
func AdminAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.AdminTokenHash == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": admin.ErrNotConfigured.Error()})
			return
		}
		if !admin.VerifyAdminToken(cfg.AdminTokenHash, c.GetHeader(adminHeader)) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin token"})
			return
		}
		c.Next()
	}
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/marble-roulette/internal/game"
)

// maxAdvanceMs bounds a single advance call.
const maxAdvanceMs = 60000

// liveSession resolves :token to a live session or writes the error response.
func liveSession(c *gin.Context) (*game.Session, bool) {
	if game.Manager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sessions unavailable"})
		return nil, false
	}
	s, err := game.Manager.Get(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return s, true
}

// sessionError maps manager errors to HTTP status codes.
func sessionError(err error) int {
	switch {
	case errors.Is(err, game.ErrSessionNotFound), errors.Is(err, game.ErrSessionExpired):
		return http.StatusNotFound
	case errors.Is(err, game.ErrUnknownPreset), errors.Is(err, game.ErrEmptyCatalog):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrTooManySessions):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// queryInt reads an integer query parameter with a fallback.
func queryInt(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

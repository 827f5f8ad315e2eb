package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/marble-roulette/internal/game"
)

// ListRuns returns recently decided runs
func ListRuns(c *gin.Context) {
	if game.Manager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sessions unavailable"})
		return
	}
	runs, err := game.Manager.RecentRuns(c.Request.Context(), queryInt(c, "limit", 20))
	if err != nil {
		log.Printf("[DB] Failed to list runs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

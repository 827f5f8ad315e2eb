package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/marble-roulette/internal/catalog"
	"github.com/playmatatu/marble-roulette/internal/config"
	"github.com/playmatatu/marble-roulette/internal/game"
)

// GetConfig returns the values the frontend needs to build its controls
func GetConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		presets := []string{game.DefaultPresetName}
		if game.Manager != nil {
			presets = game.Manager.Presets().Names()
		}
		c.JSON(http.StatusOK, gin.H{
			"presets":          presets,
			"tick_hz":          cfg.TickHz,
			"broadcast_hz":     cfg.BroadcastHz,
			"max_ball_count":   game.MaxBallCount,
			"upload_accept":    catalog.UploadAccept(),
			"upload_max_bytes": catalog.MaxUploadBytes,
			"speed_min":        game.MinSpeedMultiplier,
			"speed_max":        game.MaxSpeedMultiplier,
		})
	}
}

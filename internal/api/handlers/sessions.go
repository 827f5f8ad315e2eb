package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/marble-roulette/internal/catalog"
	"github.com/playmatatu/marble-roulette/internal/config"
	"github.com/playmatatu/marble-roulette/internal/game"
	"github.com/playmatatu/marble-roulette/internal/middleware"
)

// CreateSession starts a session on a board preset and returns its host token
func CreateSession(cfg *config.Config, store *catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Preset string         `json:"preset"`
			Counts map[string]int `json:"counts"`
			DropX  *float64       `json:"drop_x"`
			Seed   uint32         `json:"seed"`
			Speed  float64        `json:"speed"`
		}
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session request"})
				return
			}
		}
		if game.Manager == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sessions unavailable"})
			return
		}

		s, err := game.Manager.CreateSession(game.CreateSessionRequest{
			Preset:  req.Preset,
			Catalog: store.Load(c.Request.Context()),
			Counts:  req.Counts,
			DropX:   req.DropX,
			Seed:    req.Seed,
			Speed:   req.Speed,
		})
		if err != nil {
			c.JSON(sessionError(err), gin.H{"error": err.Error()})
			return
		}

		hostToken, exp, err := middleware.IssueHostToken(cfg, s.Token)
		if err != nil {
			log.Printf("[SESSION] Failed to sign host token: %v", err)
			game.Manager.End(s.Token)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Header("X-Session-Token", s.Token)
		c.JSON(http.StatusCreated, gin.H{
			"token":      s.Token,
			"host_token": hostToken,
			"expires_at": exp.Format(time.RFC3339),
			"preset":     s.Preset,
			"catalog":    s.Catalog(),
			"state":      s.Snapshot(),
		})
	}
}

// GetSessionState returns a live snapshot, or the last cached one for ended sessions
func GetSessionState(c *gin.Context) {
	if game.Manager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sessions unavailable"})
		return
	}
	token := c.Param("token")
	if s, err := game.Manager.Get(token); err == nil {
		c.Data(http.StatusOK, "application/json", []byte(s.RenderToText()))
		return
	}
	text, err := game.Manager.CachedSnapshot(c.Request.Context(), token)
	if err != nil {
		c.JSON(sessionError(err), gin.H{"error": "session not found"})
		return
	}
	c.Data(http.StatusOK, "application/json", []byte(text))
}

// SetCounts updates per-ball counts. Unknown ids are reported back, not stored.
func SetCounts(c *gin.Context) {
	s, ok := liveSession(c)
	if !ok {
		return
	}
	var req struct {
		Counts map[string]int `json:"counts" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "counts required"})
		return
	}

	stored := make(map[string]int, len(req.Counts))
	ignored := []string{}
	for id, n := range req.Counts {
		if v, ok := s.SetBallCount(id, n); ok {
			stored[id] = v
		} else {
			ignored = append(ignored, id)
		}
	}
	game.Manager.Touch(s)
	c.JSON(http.StatusOK, gin.H{"counts": stored, "ignored": ignored})
}

// SetDropX moves the drop position
func SetDropX(c *gin.Context) {
	s, ok := liveSession(c)
	if !ok {
		return
	}
	var req struct {
		X *float64 `json:"x" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.X == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "x required"})
		return
	}
	x := s.SetDropX(*req.X)
	game.Manager.Touch(s)
	c.JSON(http.StatusOK, gin.H{"drop_x": x})
}

// StartSession restarts any run in progress and drops every selected marble
func StartSession(c *gin.Context) {
	s, ok := liveSession(c)
	if !ok {
		return
	}
	if !s.HandleStart() {
		c.JSON(http.StatusConflict, gin.H{"error": "no balls selected"})
		return
	}
	game.Manager.Touch(s)
	c.JSON(http.StatusOK, gin.H{"state": s.Snapshot()})
}

// ResetSession returns the session to the menu
func ResetSession(c *gin.Context) {
	s, ok := liveSession(c)
	if !ok {
		return
	}
	s.Reset()
	game.Manager.Touch(s)
	c.JSON(http.StatusOK, gin.H{"state": s.Snapshot()})
}

// TogglePause pauses or resumes the live loop
func TogglePause(c *gin.Context) {
	s, ok := liveSession(c)
	if !ok {
		return
	}
	if !s.TogglePause() {
		c.JSON(http.StatusConflict, gin.H{"error": "nothing to pause"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"paused": s.Paused()})
}

// DropOne spawns the next queued marble
func DropOne(c *gin.Context) {
	s, ok := liveSession(c)
	if !ok {
		return
	}
	m := s.DropMarble()
	if m == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "nothing to drop"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"marble": m})
}

// DropAll spawns every queued marble at once
func DropAll(c *gin.Context) {
	s, ok := liveSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"dropped": s.DropAll()})
}

// AdvanceSession steps the simulation by ms of fixed ticks and returns the snapshot
func AdvanceSession(c *gin.Context) {
	s, ok := liveSession(c)
	if !ok {
		return
	}
	var req struct {
		Ms float64 `json:"ms" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Ms <= 0 || req.Ms > maxAdvanceMs {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ms must be in (0, 60000]"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()
	if err := s.AdvanceTime(ctx, req.Ms); err != nil {
		c.JSON(http.StatusRequestTimeout, gin.H{"error": err.Error()})
		return
	}
	game.Manager.Touch(s)
	c.Data(http.StatusOK, "application/json", []byte(s.RenderToText()))
}

// SetSpeed changes the live loop's speed multiplier
func SetSpeed(c *gin.Context) {
	s, ok := liveSession(c)
	if !ok {
		return
	}
	var req struct {
		Multiplier float64 `json:"multiplier" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multiplier required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"multiplier": s.SetSpeedMultiplier(req.Multiplier)})
}

// EndSession stops a session
func EndSession(c *gin.Context) {
	if game.Manager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sessions unavailable"})
		return
	}
	if err := game.Manager.End(c.Param("token")); err != nil {
		c.JSON(sessionError(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

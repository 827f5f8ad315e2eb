package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/marble-roulette/internal/ws"
)

// HandleSessionWebSocket streams live frames of a session
func HandleSessionWebSocket() gin.HandlerFunc {
	return ws.HandleSessionWebSocket
}

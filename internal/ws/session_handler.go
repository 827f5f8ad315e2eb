package ws

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/marble-roulette/internal/game"
	"github.com/playmatatu/marble-roulette/internal/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || wsConfig == nil {
			return true
		}
		return middleware.OriginAllowed(wsConfig, origin)
	},
}

// GameHub is the single hub for all sessions.
var GameHub *Hub

func init() {
	GameHub = NewHub()
	go GameHub.Run()
}

// Attach routes the manager's frames and local winner events into the hub.
func Attach(m *game.SessionManager) {
	m.SetFrameListener(func(token string, snap game.Snapshot) {
		GameHub.BroadcastToSession(token, frameMessage(snap))
	})
	m.SetWinnerListener(func(ev game.WinnerEvent) {
		GameHub.BroadcastToSession(ev.Token, winnerMessage(ev, 0))
	})
}

func frameMessage(snap game.Snapshot) gin.H {
	return gin.H{"type": "frame", "data": snap}
}

func winnerMessage(ev game.WinnerEvent, runID int64) gin.H {
	msg := gin.H{"type": "run_winner", "winner": ev}
	if runID > 0 {
		msg["run_id"] = runID
	}
	return msg
}

// HandleSessionWebSocket streams a session's frames. ?enc=msgpack selects binary frames.
func HandleSessionWebSocket(c *gin.Context) {
	token := c.Param("token")
	if game.Manager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sessions unavailable"})
		return
	}
	s, err := game.Manager.Get(token)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		conn:     conn,
		token:    token,
		encoding: ParseEncoding(c.Query("enc")),
		send:     make(chan []byte, 64),
	}

	GameHub.register <- client
	client.enqueue(frameMessage(s.Snapshot()))

	go client.writePump()
	go client.readPump(GameHub)
}

package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/playmatatu/marble-roulette/internal/config"
	"github.com/playmatatu/marble-roulette/internal/game"
	"github.com/redis/go-redis/v9"
)

var rdbClient *redis.Client
var wsConfig *config.Config

func SetRedisClient(r *redis.Client, cfg *config.Config) {
	rdbClient = r
	wsConfig = cfg
}

// StartRunEventSubscriber relays run_events from any instance to local spectators.
func StartRunEventSubscriber(ctx context.Context) {
	if rdbClient == nil {
		log.Println("[WS] Redis client not set; run event subscriber not started")
		return
	}

	pubsub := rdbClient.Subscribe(ctx, game.RunEventsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started", game.RunEventsChannel)
		for msg := range ch {
			handleRunEvent([]byte(msg.Payload))
		}
		log.Printf("[WS] %s subscriber stopped", game.RunEventsChannel)
	}()
}

func handleRunEvent(payload []byte) {
	var ev game.RunEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		log.Printf("[WS] invalid run event payload: %v", err)
		return
	}

	switch ev.Type {
	case "run_winner":
		size := GameHub.RoomSize(ev.SessionToken)
		if size == 0 {
			return
		}
		log.Printf("[WS] broadcasting run_winner for session %s (room_size=%d)", ev.SessionToken, size)
		GameHub.BroadcastToSession(ev.SessionToken, winnerMessage(ev.Winner, ev.RunID))
	default:
		log.Printf("[WS] unknown run event type: %s", ev.Type)
	}
}

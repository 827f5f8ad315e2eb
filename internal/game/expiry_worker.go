package game

import (
	"context"
	"log"
	"time"
)

// StartExpiryWorker ends sessions with no control activity for SessionExpiryMinutes.
func StartExpiryWorker(ctx context.Context, gm *SessionManager) {
	if gm == nil || gm.config == nil || gm.config.SessionExpiryMinutes <= 0 {
		log.Println("[EXPIRY] Expiry disabled; worker not started")
		return
	}
	every := time.Duration(gm.config.ExpiryCheckSeconds) * time.Second
	if every <= 0 {
		every = time.Minute
	}

	log.Println("[EXPIRY] Expiry worker started")
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[EXPIRY] Expiry worker stopping")
				return
			case now := <-ticker.C:
				if n := gm.ExpireIdleSessions(now); n > 0 {
					log.Printf("[EXPIRY] Ended %d idle sessions", n)
				}
			}
		}
	}()
}

// ExpireIdleSessions ends every session idle since before now minus the expiry window
// and returns how many were ended.
func (gm *SessionManager) ExpireIdleSessions(now time.Time) int {
	window := time.Duration(gm.config.SessionExpiryMinutes) * time.Minute
	if window <= 0 {
		return 0
	}

	gm.mu.RLock()
	var stale []string
	for token, ls := range gm.sessions {
		if now.Sub(ls.LastActive()) >= window {
			stale = append(stale, token)
		}
	}
	gm.mu.RUnlock()

	ended := 0
	for _, token := range stale {
		if err := gm.End(token); err == nil {
			ended++
		}
	}
	return ended
}

package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
	"github.com/playmatatu/marble-roulette/internal/models"
	"github.com/redis/go-redis/v9"
)

// RunEventsChannel carries run_winner events between instances.
const RunEventsChannel = "run_events"

// RunEvent is the pub/sub payload for a decided run.
type RunEvent struct {
	Type         string      `json:"type"`
	SessionToken string      `json:"session_token"`
	RunID        int64       `json:"run_id,omitempty"`
	Winner       WinnerEvent `json:"winner"`
}

func sessionStateKey(token string) string {
	return "session:" + token + ":state"
}

// RecordRun stores a finished run. It is a no-op without a database.
func (gm *SessionManager) RecordRun(ctx context.Context, preset string, ev WinnerEvent) (int64, error) {
	if gm == nil || gm.db == nil {
		return 0, nil
	}

	slots := make([]int64, len(ev.Slots))
	for i, s := range ev.Slots {
		slots[i] = int64(s)
	}

	var id int64
	err := gm.db.QueryRowxContext(ctx,
		`INSERT INTO runs (session_token, preset, layout, seed, marble_count, winner_marble_id, winner_ball_id, winner_name, winner_slot, winner_label, winner_t, slots, propeller_contacts, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,NOW()) RETURNING id`,
		ev.Token, preset, string(ev.Layout), int64(ev.Seed), ev.Total,
		ev.MarbleID, ev.BallID, ev.Name, ev.Slot, ev.Label, ev.T,
		pq.Array(slots), ev.Stats.PropellerContacts,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	log.Printf("[DB] Recorded run %d for session %s", id, ev.Token)
	return id, nil
}

// RecentRuns lists the latest runs, newest first.
func (gm *SessionManager) RecentRuns(ctx context.Context, limit int) ([]models.Run, error) {
	if gm.db == nil {
		return []models.Run{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	runs := []models.Run{}
	err := gm.db.SelectContext(ctx, &runs,
		`SELECT id, session_token, preset, layout, seed, marble_count, winner_marble_id, winner_ball_id, winner_name, winner_slot, winner_label, winner_t, slots, propeller_contacts, created_at
		 FROM runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	return runs, nil
}

// publishWinner announces a run on RunEventsChannel.
func (gm *SessionManager) publishWinner(ctx context.Context, ev WinnerEvent, runID int64) {
	if gm.rdb == nil {
		return
	}
	payload, err := json.Marshal(RunEvent{
		Type:         "run_winner",
		SessionToken: ev.Token,
		RunID:        runID,
		Winner:       ev,
	})
	if err != nil {
		log.Printf("[REDIS] Failed to marshal run event for %s: %v", ev.Token, err)
		return
	}
	if n, err := gm.rdb.Publish(ctx, RunEventsChannel, payload).Result(); err != nil {
		log.Printf("[REDIS] publish run_winner failed: session=%s err=%v", ev.Token, err)
	} else {
		log.Printf("[REDIS] published run_winner: session=%s subscribers=%d", ev.Token, n)
	}
}

// saveSessionToRedis caches the session's text snapshot.
func (gm *SessionManager) saveSessionToRedis(s *Session) error {
	if gm.rdb == nil {
		return nil
	}
	ttl := time.Duration(gm.config.SnapshotTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return gm.rdb.SetEx(ctx, sessionStateKey(s.Token), s.RenderToText(), ttl).Err()
}

// CachedSnapshot returns the last cached text snapshot of a session, live or ended.
func (gm *SessionManager) CachedSnapshot(ctx context.Context, token string) (string, error) {
	if gm.rdb == nil {
		return "", ErrSessionNotFound
	}
	text, err := gm.rdb.Get(ctx, sessionStateKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionExpired
	}
	if err != nil {
		return "", fmt.Errorf("load snapshot: %w", err)
	}
	return text, nil
}

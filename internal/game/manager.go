package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/marble-roulette/internal/config"
	"github.com/redis/go-redis/v9"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrUnknownPreset   = errors.New("unknown board preset")
	ErrTooManySessions = errors.New("too many active sessions")
	ErrEmptyCatalog    = errors.New("catalog is empty")
)

// snapshotSaveSpacing throttles snapshot writes from the live loop.
const snapshotSaveSpacing = time.Second

// SessionManager owns every live session on this instance
type SessionManager struct {
	sessions map[string]*liveSession // keyed by session token
	presets  *Presets
	rdb      *redis.Client // optional; snapshots and run events
	db       *sqlx.DB      // optional; run history
	config   *config.Config
	ctx      context.Context

	frameListener  func(token string, snap Snapshot)
	winnerListener func(ev WinnerEvent)

	mu sync.RWMutex
}

type liveSession struct {
	*Session
	cancel    context.CancelFunc
	lastSaved time.Time
}

// CreateSessionRequest describes a new session.
type CreateSessionRequest struct {
	Preset  string
	Catalog []Ball
	Counts  map[string]int
	DropX   *float64
	Seed    uint32 // overrides the configured default seed when non-zero
	Speed   float64
}

var (
	// Global session manager instance
	Manager *SessionManager
)

// InitializeManager builds the global manager and starts its background jobs
func InitializeManager(ctx context.Context, db *sqlx.DB, rdb *redis.Client, cfg *config.Config, presets *Presets) {
	Manager = NewSessionManager(ctx, db, rdb, cfg, presets)
	StartExpiryWorker(ctx, Manager)
}

// NewSessionManager creates a manager. db, rdb and presets may be nil.
func NewSessionManager(ctx context.Context, db *sqlx.DB, rdb *redis.Client, cfg *config.Config, presets *Presets) *SessionManager {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if presets == nil {
		presets = BuiltinPresets()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &SessionManager{
		sessions: make(map[string]*liveSession),
		presets:  presets,
		rdb:      rdb,
		db:       db,
		config:   cfg,
		ctx:      ctx,
	}
}

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// Presets returns the board presets sessions are built from.
func (gm *SessionManager) Presets() *Presets {
	return gm.presets
}

// SetFrameListener registers the receiver of live frames, typically the websocket hub.
func (gm *SessionManager) SetFrameListener(fn func(token string, snap Snapshot)) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.frameListener = fn
}

// SetWinnerListener registers the local receiver of winner events. With Redis
// configured, events travel over pub/sub instead and this is not called.
func (gm *SessionManager) SetWinnerListener(fn func(ev WinnerEvent)) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.winnerListener = fn
}

// CreateSession starts a session and its live loop.
func (gm *SessionManager) CreateSession(req CreateSessionRequest) (*Session, error) {
	board, ok := gm.presets.Board(req.Preset)
	if !ok {
		return nil, ErrUnknownPreset
	}
	if len(req.Catalog) == 0 {
		return nil, ErrEmptyCatalog
	}
	preset := req.Preset
	if preset == "" {
		preset = DefaultPresetName
	}

	seed := req.Seed
	if seed == 0 {
		seed = gm.config.DefaultSeed
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()

	if limit := gm.config.MaxSessions; limit > 0 && len(gm.sessions) >= limit {
		return nil, ErrTooManySessions
	}

	token := generateToken(16)
	s := NewSession(SessionOptions{
		Token:     token,
		Board:     board,
		Catalog:   req.Catalog,
		FixedSeed: seed,
		Speed:     req.Speed,
		Preset:    preset,
	})
	for id, n := range req.Counts {
		s.sim.SetBallCount(id, n)
	}
	if req.DropX != nil {
		s.sim.SetDropX(*req.DropX)
	}

	ctx, cancel := context.WithCancel(gm.ctx)
	ls := &liveSession{Session: s, cancel: cancel}
	s.OnWinner = gm.handleWinner
	s.OnFrame = func(snap Snapshot) { gm.handleFrame(ls, snap) }
	gm.sessions[token] = ls

	go s.Run(ctx, gm.tickHz(), gm.config.BroadcastHz)

	log.Printf("[SESSION] Created %s preset=%s balls=%d", token, preset, len(req.Catalog))
	go gm.saveSessionToRedis(s)
	return s, nil
}

func (gm *SessionManager) tickHz() int {
	if gm.config.TickHz > 0 {
		return gm.config.TickHz
	}
	return 60
}

// Get returns a live session by token.
func (gm *SessionManager) Get(token string) (*Session, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	ls, ok := gm.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ls.Session, nil
}

// End stops a session's loop and forgets it. The last snapshot stays cached.
func (gm *SessionManager) End(token string) error {
	gm.mu.Lock()
	ls, ok := gm.sessions[token]
	if ok {
		delete(gm.sessions, token)
	}
	gm.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	ls.cancel()
	if err := gm.saveSessionToRedis(ls.Session); err != nil {
		log.Printf("[REDIS] Failed to save final snapshot for %s: %v", token, err)
	}
	log.Printf("[SESSION] Ended %s", token)
	return nil
}

// Count returns the number of live sessions.
func (gm *SessionManager) Count() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.sessions)
}

// Touch persists the current snapshot after a control call.
func (gm *SessionManager) Touch(s *Session) {
	go func() {
		if err := gm.saveSessionToRedis(s); err != nil {
			log.Printf("[REDIS] Failed to save snapshot for %s: %v", s.Token, err)
		}
	}()
}

// Shutdown ends every session.
func (gm *SessionManager) Shutdown() {
	gm.mu.RLock()
	tokens := make([]string, 0, len(gm.sessions))
	for t := range gm.sessions {
		tokens = append(tokens, t)
	}
	gm.mu.RUnlock()
	for _, t := range tokens {
		gm.End(t)
	}
}

func (gm *SessionManager) handleFrame(ls *liveSession, snap Snapshot) {
	gm.mu.RLock()
	fn := gm.frameListener
	gm.mu.RUnlock()
	if fn != nil {
		fn(ls.Token, snap)
	}

	if gm.rdb != nil && time.Since(ls.lastSaved) >= snapshotSaveSpacing {
		ls.lastSaved = time.Now()
		gm.Touch(ls.Session)
	}
}

func (gm *SessionManager) handleWinner(ev WinnerEvent) {
	log.Printf("[SESSION] %s winner %s (%s) slot=%s t=%.3f", ev.Token, ev.MarbleID, ev.Name, ev.Label, ev.T)

	preset := DefaultPresetName
	if s, err := gm.Get(ev.Token); err == nil {
		preset = s.Preset
	}

	if gm.rdb == nil {
		gm.mu.RLock()
		fn := gm.winnerListener
		gm.mu.RUnlock()
		if fn != nil {
			fn(ev)
		}
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		runID, err := gm.RecordRun(ctx, preset, ev)
		if err != nil {
			log.Printf("[DB] Failed to record run for %s: %v", ev.Token, err)
		}
		gm.publishWinner(ctx, ev, runID)
		if s, err := gm.Get(ev.Token); err == nil {
			if err := gm.saveSessionToRedis(s); err != nil {
				log.Printf("[REDIS] Failed to save snapshot for %s: %v", ev.Token, err)
			}
		}
	}()
}

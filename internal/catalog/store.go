package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/playmatatu/marble-roulette/internal/game"
	"github.com/redis/go-redis/v9"
)

// StorageKey is where the catalog JSON array lives.
const StorageKey = "marble-roulette:balls:v1"

var (
	ErrNoValidEntries     = errors.New("catalog has no valid entries")
	ErrStorageUnavailable = errors.New("catalog storage not configured")
)

// Store persists the catalog in Redis. A nil client serves the defaults.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Load returns the stored catalog, or the defaults when nothing valid is stored.
// Storage errors are logged, never returned.
func (s *Store) Load(ctx context.Context) []game.Ball {
	if s == nil || s.rdb == nil {
		return DefaultCatalog()
	}
	raw, err := s.rdb.Get(ctx, StorageKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[CATALOG] Load failed, using defaults: %v", err)
		}
		return DefaultCatalog()
	}
	switch r := Validate(raw).(type) {
	case Valid:
		return r.Catalog
	case Invalid:
		log.Printf("[CATALOG] Stored catalog rejected (%s), using defaults", r.Reason)
	}
	return DefaultCatalog()
}

// Save validates and stores balls, returning what was kept.
func (s *Store) Save(ctx context.Context, balls []game.Ball) ([]game.Ball, error) {
	r, ok := ValidateBalls(balls).(Valid)
	if !ok {
		return nil, ErrNoValidEntries
	}
	if s == nil || s.rdb == nil {
		return nil, ErrStorageUnavailable
	}
	raw, err := json.Marshal(r.Catalog)
	if err != nil {
		return nil, fmt.Errorf("marshal catalog: %w", err)
	}
	if err := s.rdb.Set(ctx, StorageKey, raw, 0).Err(); err != nil {
		return nil, fmt.Errorf("save catalog: %w", err)
	}
	log.Printf("[CATALOG] Saved %d balls", len(r.Catalog))
	return r.Catalog, nil
}

// RestoreDefaults drops the stored catalog and returns the defaults.
func (s *Store) RestoreDefaults(ctx context.Context) []game.Ball {
	if s != nil && s.rdb != nil {
		if err := s.rdb.Del(ctx, StorageKey).Err(); err != nil {
			log.Printf("[CATALOG] Restore defaults failed: %v", err)
		}
	}
	return DefaultCatalog()
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"github.com/playmatatu/marble-roulette/internal/api"
	"github.com/playmatatu/marble-roulette/internal/catalog"
	"github.com/playmatatu/marble-roulette/internal/config"
	"github.com/playmatatu/marble-roulette/internal/database"
	"github.com/playmatatu/marble-roulette/internal/game"
	"github.com/playmatatu/marble-roulette/internal/migrations"
	"github.com/playmatatu/marble-roulette/internal/redis"
	"github.com/playmatatu/marble-roulette/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database is optional: without it runs are not recorded
	var db *sqlx.DB
	if cfg.DatabaseURL != "" {
		if cfg.MigrateOnStart {
			log.Println("↗ Running DB migrations on startup...")
			if err := migrations.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		}
		conn, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer conn.Close()
		db = conn
	} else {
		log.Println("[DB] DATABASE_URL not set; run history disabled")
	}

	// Redis is optional: without it the catalog is read-only defaults
	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		client, err := redis.Connect(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer client.Close()
		rdb = client
	} else {
		log.Println("[REDIS] REDIS_URL not set; catalog edits and snapshot cache disabled")
	}

	presets, err := game.LoadPresets(cfg.BoardPresetsPath)
	if err != nil {
		log.Fatalf("Failed to load board presets: %v", err)
	}
	log.Printf("[SESSION] Board presets: %v", presets.Names())

	// Initialize Session Manager and its expiry worker
	game.InitializeManager(ctx, db, rdb, cfg, presets)

	// Wire the websocket hub to live frames and run events
	ws.SetRedisClient(rdb, cfg)
	ws.Attach(game.Manager)
	ws.StartRunEventSubscriber(ctx)

	// Set up Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	api.SetupRoutes(router, catalog.NewStore(rdb), cfg)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: router}

	go func() {
		log.Printf("Starting marble-roulette server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	game.Manager.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

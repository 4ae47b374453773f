package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/kasuganosora/patrolbot/api"
	"github.com/kasuganosora/patrolbot/audit"
	"github.com/kasuganosora/patrolbot/config"
	dbadapter "github.com/kasuganosora/patrolbot/db"
	"github.com/kasuganosora/patrolbot/events"
	"github.com/kasuganosora/patrolbot/game/world"
	"github.com/kasuganosora/patrolbot/gamemath"
	mw "github.com/kasuganosora/patrolbot/middleware"
	"github.com/kasuganosora/patrolbot/model"
	"github.com/kasuganosora/patrolbot/resource"
	"go.uber.org/zap"
)

const defaultConfigPath = "config/config.yaml"

func main() {
	args := os.Args[1:]
	if len(args) > 0 && args[0] == "token" {
		runToken(args[1:])
		return
	}
	cfgPath := defaultConfigPath
	if len(args) > 0 {
		cfgPath = args[0]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Level ----
	level, err := loadLevel(cfg.Game)
	if err != nil {
		log.Fatalf("level: %v", err)
	}
	logger.Info("level loaded",
		zap.String("path", cfg.Game.LevelPath),
		zap.Int("width", level.Pass.Width),
		zap.Int("height", level.Pass.Height),
		zap.Int("blocked_cells", level.Pass.BlockedCount()),
		zap.Int("placements", len(level.Bots)))

	// ---- Event bus ----
	bus, err := events.NewBus(cfg.Events)
	if err != nil {
		log.Fatalf("events: %v", err)
	}
	if c, ok := bus.(io.Closer); ok {
		defer c.Close()
	}
	emitter := events.NewEmitter(bus, cfg.Events.Channel, cfg.Events.Buffer, logger)
	emitterDone := make(chan struct{})
	go func() {
		emitter.Run(ctx)
		close(emitterDone)
	}()

	// ---- Recording ----
	var actions *audit.Service
	var recorder *audit.Recorder
	if cfg.Database.Mode != dbadapter.ModeOff {
		if cfg.Database.Mode == dbadapter.ModeSQLite {
			if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
				log.Fatalf("db: %v", err)
			}
		}
		gdb, err := dbadapter.Open(cfg.Database)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		if err := model.AutoMigrate(gdb); err != nil {
			log.Fatalf("db migrate: %v", err)
		}
		opts := audit.Options{FlushEvery: cfg.Database.FlushEvery, BatchSize: cfg.Database.BatchSize}
		actions = audit.New(gdb, opts, logger)
		defer actions.Stop(context.Background())
		recorder = audit.NewRecorder(gdb, opts, logger)
		defer recorder.Stop(context.Background())
		go func() {
			if err := recorder.Consume(ctx, bus, emitter.Channel()); err != nil {
				logger.Error("event recorder stopped", zap.Error(err))
			}
		}()
		logger.Info("recording enabled", zap.String("mode", cfg.Database.Mode))
	}

	// ---- Room ----
	spawn := gamemath.Vec3{X: cfg.Player.Position.X, Y: cfg.Player.Position.Y, Z: cfg.Player.Position.Z}
	if level.PlayerSpawn != nil {
		spawn = *level.PlayerSpawn
	}
	player := world.NewPlayer(spawn, cfg.Player.Life, logger)
	room := world.NewRoom(level, player, world.Options{
		TickInterval: cfg.Game.TickInterval(),
		StatusEvery:  time.Duration(cfg.Game.StatusIntervalS) * time.Second,
		Events:       emitter,
	}, logger)

	bots, err := world.NewSpawner(room, level, cfg.Bots, logger).SpawnAll()
	if err != nil {
		log.Fatalf("spawn: %v", err)
	}
	logger.Info("bots spawned", zap.Int("count", len(bots)))

	go room.Run()
	logger.Info("room running", zap.Duration("tick", cfg.Game.TickInterval()))

	// ---- Debug API ----
	var srv *http.Server
	if cfg.Server.Debug && cfg.Server.DebugAddr != "" {
		if cfg.Server.DebugSecret == "" {
			logger.Warn("server.debug_secret is not set; debug mutations are open")
		}
		router, err := api.NewRouter(ctx, cfg.Server, api.Deps{
			Room:     room,
			Bus:      bus,
			Channel:  emitter.Channel(),
			Actions:  actions,
			Recorder: recorder,
			Logger:   logger,
		})
		if err != nil {
			log.Fatalf("debug api: %v", err)
		}
		srv = &http.Server{
			Addr:              cfg.Server.DebugAddr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("debug API listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("debug API failed", zap.Error(err))
				stop()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")
	room.Stop()
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("debug API shutdown", zap.Error(err))
		}
		cancel()
	}
	<-emitterDone
	if d := emitter.Dropped(); d > 0 {
		logger.Warn("events dropped during run", zap.Uint64("count", d))
	}
}

// loadLevel opens the TMX level named in cfg, or an open arena without one.
func loadLevel(cfg config.GameConfig) (*resource.Level, error) {
	if cfg.LevelPath == "" {
		return resource.OpenLevel(cfg.Width, cfg.Height, cfg.CellSize), nil
	}
	dir, name := filepath.Split(cfg.LevelPath)
	if dir == "" {
		dir = "."
	}
	return resource.LoadLevel(os.DirFS(dir), name, cfg.CellSize)
}

// runToken prints an operator token for the debug API:
//
//	patrolbot token <operator> [config.yaml]
func runToken(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: patrolbot token <operator> [config.yaml]")
		os.Exit(2)
	}
	cfgPath := defaultConfigPath
	if len(args) > 1 {
		cfgPath = args[1]
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	token, err := mw.IssueOperatorToken(args[0], cfg.Server.DebugSecret, cfg.Server.DebugTokenTTL)
	if err != nil {
		log.Fatalf("token: %v", err)
	}
	fmt.Println(token)
}

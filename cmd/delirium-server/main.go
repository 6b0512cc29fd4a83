// Package main is the entry point for the delirium scene server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Fred-qub/deliriumGame/internal/engine"
	"github.com/Fred-qub/deliriumGame/internal/events"
	"github.com/Fred-qub/deliriumGame/internal/infra/storage"
	"github.com/Fred-qub/deliriumGame/internal/ledger"
	"github.com/Fred-qub/deliriumGame/internal/network"
	"github.com/Fred-qub/deliriumGame/internal/platform/config"
	"github.com/Fred-qub/deliriumGame/internal/platform/logger"
	"github.com/Fred-qub/deliriumGame/internal/platform/metrics"
	"github.com/Fred-qub/deliriumGame/internal/scene"
	"github.com/Fred-qub/deliriumGame/internal/script"
)

func main() {
	log.Println("[DELIRIUM-SERVER] Initializing scene server...")

	appLogger := logger.NewLogger()

	envCfg, err := config.ParseEnv()
	if err != nil {
		appLogger.Error("Failed to parse environment: %v", err)
		os.Exit(1)
	}

	tuning, err := config.LoadTuning(envCfg.TuningPath)
	if err != nil {
		appLogger.Error("Failed to load tuning: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appLogger.Info("Initializing SQLite database %q...", envCfg.DBPath)
	db, err := storage.InitSQLite(envCfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to initialize SQLite: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	eventRepo := storage.NewSQLiteEventRepository(db)
	interactionRepo := storage.NewSQLiteInteractionRepository(db)

	appLogger.Info("Bootstrapping EventLog...")
	eventLog := events.NewEventLog(storage.NewEventSink(eventRepo))

	appLogger.Info("Loading script library from %q...", envCfg.ScriptDir)
	library := script.NewLibrary(appLogger)
	if err := library.LoadDir(envCfg.ScriptDir); err != nil {
		appLogger.Error("Failed to load scripts: %v", err)
		os.Exit(1)
	}
	if envCfg.WatchDir {
		if err := library.Watch(ctx, envCfg.ScriptDir); err != nil {
			appLogger.Warn("Script hot reload unavailable: %v", err)
		}
	}

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(appLogger, nil, tuning.ClientSendBuffer)
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, eventLog)

	// The director's transition target is resolved after the controller
	// exists; the closure captures the late-bound pointer.
	var controller *scene.Controller
	director := ledger.NewDirector(func(target string) {
		if target == "PatientPOV" && controller != nil {
			go controller.EnterPatientPOV(ctx)
		}
	}, eventLog, appLogger)

	appLogger.Info("Bootstrapping interaction ledger (max %d)...", tuning.MaxInteractions)
	led := ledger.New(ledger.Config{
		MaxInteractions: tuning.MaxInteractions,
		TransitionScene: tuning.TransitionScene,
		TransitionDelay: tuning.TransitionDelay(),
		Director:        director,
		Store:           storage.NewInteractionSink(interactionRepo),
		EventLog:        eventLog,
		Logger:          appLogger,
	})

	appLogger.Info("Bootstrapping playback engine...")
	opts := engine.OptionsFromTuning(tuning)
	presentation := engine.NewPresentation(opts, hub, appLogger)
	sequencer := engine.NewSequencer(presentation, opts, led, eventLog, appLogger)
	replay := engine.NewReplayDirector(sequencer, library, hub.TriggerAnimation, eventLog, appLogger)

	controller = scene.NewController(sequencer, led, library, replay, hub.TriggerAnimation, appLogger)
	hub.SetActionHandler(controller)

	// The doctor opens the scene muffled; authored under "Opening".
	if !controller.PlayOpening("Opening") {
		appLogger.Warn("No authored Opening sequence, scene starts silent")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.HandleFunc("/metrics", metrics.Handler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":    "ok",
			"sequencer": string(sequencer.State()),
			"ledger":    string(led.State()),
		})
	})
	network.NewRecapHandler(eventLog, led, appLogger).RegisterRoutes(mux)

	server := &http.Server{Addr: envCfg.Addr, Handler: mux}
	go func() {
		log.Printf("[DELIRIUM-SERVER] HTTP API & WS Server listening on %s", envCfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Println("[DELIRIUM-SERVER] Server running. Press Ctrl+C to exit.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[DELIRIUM-SERVER] Shutting down...")
	sequencer.Cancel()
	director.Cancel()
	cancel()
	_ = server.Shutdown(context.Background())
}

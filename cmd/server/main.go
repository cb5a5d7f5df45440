package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"rts-arena-server/internal/api"
	"rts-arena-server/internal/config"
	"rts-arena-server/internal/room"
	"rts-arena-server/internal/transport"
)

func main() {
	if err := godotenv.Load("../.env"); err != nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("no .env file found, using environment variables only")
		}
	}

	log.Println("rts-arena-server starting")

	appConfig := config.Load()

	log.Printf("sim: %d tick/s, %d snapshot/s, map %dx%d tiles at %dpx",
		appConfig.Sim.TickRate, appConfig.Sim.SnapshotRate,
		appConfig.Sim.MapWidth, appConfig.Sim.MapHeight, appConfig.Sim.TileSize)

	debugCfg := api.DefaultObservabilityConfig()
	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(debugCfg); err != nil {
			log.Printf("debug server disabled: %v", err)
		}
	}

	manager := room.NewManager(appConfig)
	defer manager.Close()

	hub := transport.NewHub(manager)

	server := api.NewServer(manager, hub.ServeWS)
	defer server.Stop()

	addr := ":" + strconv.Itoa(appConfig.Server.Port)
	go func() {
		log.Printf("API server on http://localhost%s", addr)
		if err := server.Start(addr); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("server ready, press Ctrl+C to stop")
	<-quit

	log.Println("shutting down")
}

package main

import (
	"flag"
	"io"
	"log"
	"os"
	"time"

	"roulette/internal/config"
	"roulette/internal/handlers"
	"roulette/internal/services"
	"roulette/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
)

func main() {
	configPath := flag.String("config", "roulette.yaml", "path to the YAML config file")
	flag.Parse()

	// 1. Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize logging
	var logOut io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o660)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer f.Close()
		logOut = f
	}
	defer logger.Init("roulette", cfg.Verbose, false, logOut).Close()

	// 3. Open the persistence adapter
	var store storage.Store
	switch cfg.Store {
	case config.StoreMemory:
		store = storage.NewMemoryStore()
	default:
		sq, err := storage.OpenSqlite(cfg.DBPath)
		if err != nil {
			logger.Fatalf("Failed to open store: %v", err)
		}
		store = sq
	}
	defer store.Close()

	// 4. Initialize the Roulette Service
	rouletteService := services.NewRouletteService(store)

	// 5. Initialize the HTTP Handler and router
	gin.SetMode(cfg.GinMode)
	r := gin.Default()
	handlers.NewHTTPHandler(rouletteService).RegisterRoutes(r)

	// 6. Start the background janitor for draws nobody resolved
	if cfg.StaleResolveAfter > 0 {
		go func() {
			for {
				time.Sleep(time.Minute)
				rouletteService.ResolveStale(cfg.StaleResolveAfter)
			}
		}()
	}

	// 7. Run the server
	logger.Infof("Server starting on %s", cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		logger.Fatalf("Failed to run server: %v", err)
	}
}

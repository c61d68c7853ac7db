package main

import (
	"context"
	"log"

	"travel-assistant-be/internal/bootstrap"
	"travel-assistant-be/internal/config"
	"travel-assistant-be/internal/server"
	"travel-assistant-be/internal/tracer"
	"travel-assistant-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 0. Initialize Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	// A missing database is not fatal: the chat surface still serves
	// web-grounded answers and health reports degraded.
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Printf("[WARN] Unable to connect to GORM DB: %v", err)
		} else {
			gormDB = db
		}
	} else {
		log.Println("[WARN] DB_CONNECTION_STRING not set, knowledge base disabled")
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	if container.ConsumerService != nil {
		go func() {
			log.Println("Background: Starting Consumer Service...")
			if err := container.ConsumerService.Consume(context.Background()); err != nil {
				log.Printf("Background Consumer Error: %v", err)
			}
		}()
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}

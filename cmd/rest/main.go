package main

import (
	"context"
	"log"

	"portfolio-assistant-be/internal/bootstrap"
	"portfolio-assistant-be/internal/config"
	"portfolio-assistant-be/internal/server"
	"portfolio-assistant-be/internal/tracer"
	"portfolio-assistant-be/pkg/database"
)

func main() {
	cfg := config.Load()

	shutdownTracer := tracer.Init(cfg.Tracing, cfg.App.Environment)
	defer shutdownTracer(context.Background())

	gormDB, err := database.NewGormDB(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	// Background consumers: document embedding and query logging
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}

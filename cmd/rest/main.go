package main

import (
	"context"
	"log"
	"time"

	"github.com/tigernone/corpusqa/internal/bootstrap"
	"github.com/tigernone/corpusqa/internal/config"
	"github.com/tigernone/corpusqa/internal/server"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(cfg)
	if err != nil {
		log.Panicf("Unable to bootstrap: %v", err)
	}
	defer container.Close()

	// 3. Start Background Services
	container.StartJanitor(5 * time.Minute)
	go func() {
		log.Println("Background: Starting Embedding Consumer...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 4. Run Server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}

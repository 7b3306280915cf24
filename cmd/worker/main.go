package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mediora-ai/mediora/internal/app"
	"github.com/mediora-ai/mediora/internal/config"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		cancel()
	}()

	cfg := config.LoadConfig()
	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer application.Close()

	go func() {
		if err := application.Server.Start(); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	if err := application.Server.Shutdown(context.Background()); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

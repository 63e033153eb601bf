// @title           Capture API
// @version         1.0
// @description     User management API with a boot-time capture pipeline.
// @host            localhost:8080
// @BasePath        /
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

	"github.com/sylvain-bouchard/capture-api/internal/app"
	"github.com/sylvain-bouchard/capture-api/internal/capture"
	"github.com/sylvain-bouchard/capture-api/internal/config"

	_ "github.com/sylvain-bouchard/capture-api/docs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// The capture pipeline has its own failure domain: it never blocks or
	// aborts HTTP startup.
	if cfg.Media.Enabled {
		go func() {
			if err := capture.Record(context.Background(), cfg.Media); err != nil {
				log.Printf("capture pipeline: %v", err)
				return
			}
			log.Printf("capture pipeline finished")
		}()
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("app init: %v", err)
	}
	log.Printf("app ready, starting HTTP server")
	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.HTTP.Port,
		Handler:      application.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout.Duration(),
		WriteTimeout: cfg.HTTP.WriteTimeout.Duration(),
		IdleTimeout:  cfg.HTTP.IdleTimeout.Duration(),
	}

	go func() {
		log.Printf("HTTP server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("HTTP server error: %v", err)
			panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		panic(err)
	}

	if err := application.Close(ctx); err != nil {
		panic(err)
	}
}

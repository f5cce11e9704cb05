package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vibeloghq/vibelog/internal/config"
	"github.com/vibeloghq/vibelog/internal/db"
	"github.com/vibeloghq/vibelog/internal/httpapi"
	"github.com/vibeloghq/vibelog/internal/httpapi/handlers"
	"github.com/vibeloghq/vibelog/internal/journal"
	"github.com/vibeloghq/vibelog/internal/localstore"
	"github.com/vibeloghq/vibelog/internal/store/rabbitmq"
	"github.com/vibeloghq/vibelog/internal/store/redisstore"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDriver, cfg.DBDSN)

	// local mode keeps journal records in JSON files; users and export
	// jobs stay in sqlite either way.
	var store journal.Store
	if cfg.DBDriver == "local" {
		ls, err := localstore.Open(cfg.LocalDataDir)
		if err != nil {
			log.Fatalf("localstore open: %v", err)
		}
		store = ls
		log.Printf("journal records in %s", cfg.LocalDataDir)
	}

	rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
		time.Duration(cfg.StatsCacheTTLSeconds)*time.Second)
	defer rds.Close()

	// Export jobs are rendered inline when the broker is unreachable, so
	// a failed dial degrades the deployment instead of killing it.
	rabbit, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		log.Printf("rabbitmq unavailable, exports will run inline: %v", err)
		rabbit = nil
	} else {
		defer rabbit.Close()
	}

	h := handlers.NewHandler(gdb, cfg, store, rds, rabbit)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.NewRouter(h),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

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

	"ripple/backend/internal/config"
	"ripple/backend/internal/db"
	"ripple/backend/internal/handler"
	transport "ripple/backend/internal/http"
	"ripple/backend/internal/logger"
	"ripple/backend/internal/network"
	"ripple/backend/internal/repository"
	"ripple/backend/internal/rss"
	"ripple/backend/internal/scheduler"
	"ripple/backend/internal/service"
	"ripple/backend/internal/snowflake"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.ParseLevel(cfg.LogLevel))

	if err := snowflake.Init(cfg.NodeID); err != nil {
		log.Fatalf("init snowflake node: %v", err)
	}

	dbConn, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer dbConn.Close()

	feedRepo := repository.NewFeedRepository(dbConn)
	entryRepo := repository.NewEntryRepository(dbConn)
	lockRepo := repository.NewLockRepository(dbConn)

	clients := network.NewClientFactory(cfg.ProxyURL)
	fetcher := rss.NewFetcher(clients)

	streamService := service.NewStreamService(feedRepo, entryRepo, lockRepo, fetcher)
	streamHandler := handler.NewStreamHandler(streamService)

	router := transport.NewRouter(streamHandler)

	// Background refresh keeps followed feeds inside the staleness window
	// without waiting for a read request to trigger it.
	sched := scheduler.New(streamService, 15*time.Minute)
	sched.Start()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down", "module", "main", "action", "shutdown", "resource", "server", "result", "ok")

		sched.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := router.Shutdown(ctx); err != nil {
			logger.Error("server shutdown failed", "module", "main", "action", "shutdown", "resource", "server", "result", "failed", "error", err)
		}
	}()

	if err := router.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("start server: %v", err)
	}
}

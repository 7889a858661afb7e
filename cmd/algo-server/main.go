// Command algo-server hosts a single two-player match over websockets.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Yamazak-mc/algo-cg/internal/cache"
	"github.com/Yamazak-mc/algo-cg/internal/config"
	"github.com/Yamazak-mc/algo-cg/internal/server"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("could not load .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	log.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cache.Init(ctx); err != nil {
		log.WithError(err).Warn("redis unavailable, action history disabled")
	}

	if err := server.New(cfg, log).Run(ctx); err != nil {
		log.WithError(err).Fatal("server exited")
	}
	log.Info("server stopped")
}

package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raushankrgupta/product-page-generator/bootstrap"
	"github.com/raushankrgupta/product-page-generator/config"
	"github.com/raushankrgupta/product-page-generator/utils"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.NewLogger(utils.LoggerOptions{}).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(utils.LoggerOptions{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 6 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		logger.Error("failed to listen", "addr", server.Addr, "error", err)
		app.Close(context.Background())
		os.Exit(1)
	}

	logger.Info("server starting", "port", cfg.Port)
	if err := app.Serve(ctx, server, ln, 30*time.Second); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/JimmyChen02/Multithreaded-Chat-Server/internal/server"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run loads the configuration, serves until SIGINT or SIGTERM and returns only
// startup or shutdown failures.
func run() error {
	_ = godotenv.Load()

	cfg, err := server.LoadConfig()
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, log)
	if err := srv.Listen(); err != nil {
		return err
	}
	log.Info("Starting chat server", "name", cfg.ServerName, "tcp", cfg.TCPAddr, "http", cfg.HTTPAddr)

	return srv.Run(ctx)
}
